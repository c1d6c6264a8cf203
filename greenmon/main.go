package main

import (
	"flag"
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/greenmon/pkg/config"
	"github.com/itohio/greenmon/pkg/screen"
	"github.com/itohio/greenmon/pkg/store"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Run the monitor against a simulated greenhouse instead of the serial port")
		dbFlag     = flag.String("db", "", "Sample database path override (\"none\" disables storage)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	// Override database path if provided via command line
	if *dbFlag != "" {
		cfg.Storage.Path = *dbFlag
	}

	// Open sample storage; the monitor keeps working without it
	var db *store.Store
	if cfg.Storage.Path != "none" {
		db, err = store.Open(cfg.Storage.Path)
		if err != nil {
			log.Printf("Sample storage disabled: %v", err)
			db = nil
		} else {
			defer db.Close()
			log.Printf("Storing samples in %s (session %s)", cfg.Storage.Path, db.Session())
		}
	}

	// Create Fyne application
	application := app.NewWithID("com.itohio.greenmon")

	// Create main window
	window := application.NewWindow("Greenhouse Monitor")
	window.CenterOnScreen()

	// Create application state
	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		store:      db,
		window:     window,
		useMock:    *mockFlag,
	}

	// Create screen widget mirroring the device panel
	state.screen = screen.New(cfg.Layout, screen.DefaultScale)
	state.status = widget.NewLabel("Disconnected")

	// Create toolbar
	toolbar := createToolbar(state)

	content := container.NewBorder(
		toolbar,
		state.status,
		nil,
		nil,
		container.NewCenter(state.screen),
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		stopSession(state)
	})
	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	store      *store.Store
	window     fyne.Window
	screen     *screen.ScreenWidget
	status     *widget.Label
	connectBtn *widget.Button
	useMock    bool
	session    session // nil if not connected
}

// createToolbar creates the application toolbar with Connect, Settings and History buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	historyBtn := widget.NewButtonWithIcon("", theme.HistoryIcon(), func() {
		showHistoryDialog(state)
	})
	if state.store == nil {
		historyBtn.Disable()
	}

	return container.NewHBox(connectBtn, settingsBtn, historyBtn)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.session != nil {
		stopSession(state)
		state.connectBtn.SetIcon(theme.LoginIcon())
		state.status.SetText("Disconnected")
		if state.useMock {
			fmt.Println("Stopped simulated monitor")
		} else {
			fmt.Println("Disconnected from serial port")
		}
		return
	}

	var (
		s   session
		err error
	)
	if state.useMock {
		s, err = startMock(state)
	} else {
		s, err = startSerial(state)
	}
	if err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to start simulated monitor: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}

	state.session = s
	state.connectBtn.SetIcon(theme.LogoutIcon())
	if state.useMock {
		fmt.Println("Running monitor against simulated greenhouse")
	} else {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}
}

// stopSession gracefully stops the running session, if any.
func stopSession(state *appState) {
	if state.session == nil {
		return
	}
	state.session.Stop()
	state.session = nil
}

// setStatus updates the status line from any goroutine.
func setStatus(state *appState, text string) {
	fyne.Do(func() {
		state.status.SetText(text)
	})
}
