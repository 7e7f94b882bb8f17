package ui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/PCIGITI/elbow-driver/controller"
	"github.com/PCIGITI/elbow-driver/protocol"
)

var baudRates = []string{"9600", "19200", "57600", "115200"}

// prefField ties a stored preference to a connection setting
type prefField struct {
	key      string
	fallback string
	value    func(*controller.Config) *string
}

var prefFields = []prefField{
	{"serialPort", "", func(c *controller.Config) *string { return &c.SerialPort }},
	{"baudRate", strconv.Itoa(protocol.DefaultBaudRate), func(c *controller.Config) *string { return &c.BaudRate }},
	{"twchartAddr", "", func(c *controller.Config) *string { return &c.TWChartAddr }},
	{"sessionName", "", func(c *controller.Config) *string { return &c.SessionName }},
	{"constantsFile", "", func(c *controller.Config) *string { return &c.ConstantsFile }},
}

func loadPreferences(prefs fyne.Preferences, cfg *controller.Config) {
	for _, f := range prefFields {
		*f.value(cfg) = prefs.StringWithFallback(f.key, f.fallback)
	}
}

func savePreferences(prefs fyne.Preferences, cfg *controller.Config) {
	for _, f := range prefFields {
		prefs.SetString(f.key, *f.value(cfg))
	}
}

func validateBaudRate(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid baud rate %q", s)
	}
	return nil
}

// ConfigWindow asks for the connection settings before the panel opens. Settings are remembered
// in the app preferences
type ConfigWindow struct {
	app      fyne.App
	OnSubmit func()
}

func NewConfigWindow(app fyne.App) *ConfigWindow {
	return &ConfigWindow{
		app: app,
	}
}

// connectionForm binds each field of cfg to an input. Only the baud rate is validated; the port
// always has a selection and everything else is optional
func connectionForm(cfg *controller.Config, ports []string, parent fyne.Window) *widget.Form {
	if !slices.Contains(ports, cfg.SerialPort) {
		cfg.SerialPort = ports[0]
	}
	port := widget.NewSelect(ports, nil)
	port.Bind(binding.BindString(&cfg.SerialPort))

	baud := widget.NewSelectEntry(baudRates)
	baud.Bind(binding.BindString(&cfg.BaudRate))
	baud.Validator = validateBaudRate

	twchartAddr := widget.NewEntryWithData(binding.BindString(&cfg.TWChartAddr))
	twchartAddr.SetPlaceHolder("http://localhost:8080")

	session := widget.NewEntryWithData(binding.BindString(&cfg.SessionName))
	session.SetPlaceHolder("Elbow Driver")

	constants := widget.NewEntryWithData(binding.BindString(&cfg.ConstantsFile))
	constants.SetPlaceHolder("built-in constants")
	browse := widget.NewButton("...", func() {
		open := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil || r == nil {
				return
			}
			defer r.Close()
			constants.SetText(r.URI().Path())
		}, parent)
		open.SetFilter(storage.NewExtensionFileFilter([]string{".yaml", ".yml"}))
		open.Show()
	})

	return &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: port, HintText: controller.SerialPortNone + " runs without hardware"},
			{Text: "Baud Rate", Widget: baud},
			{Text: "TWChart", Widget: twchartAddr, HintText: "optional"},
			{Text: "Session", Widget: session},
			{Text: "Constants", Widget: container.NewBorder(nil, nil, nil, browse, constants)},
		},
		SubmitText: "Connect",
		CancelText: "Quit",
	}
}

func (cw *ConfigWindow) Show(cfg *controller.Config) {
	window := cw.app.NewWindow("Elbow Driver - Connection")
	window.Resize(fyne.NewSize(460, 300))
	window.SetCloseIntercept(func() {
		window.Close()
		cw.app.Quit()
	})
	window.Show()

	loadPreferences(cw.app.Preferences(), cfg)

	ports, err := controller.GetSerialPorts()
	if err != nil && !errors.Is(err, controller.ErrNoUSBSerial) {
		showError(cw.app, window, fmt.Errorf("error getting serial ports: %w", err))
		return
	}
	ports = append(ports, controller.SerialPortNone)

	form := connectionForm(cfg, ports, window)
	form.OnSubmit = func() {
		savePreferences(cw.app.Preferences(), cfg)
		window.SetCloseIntercept(nil)
		window.Close()
		cw.OnSubmit()
	}
	form.OnCancel = func() {
		window.Close()
		cw.app.Quit()
	}

	window.SetContent(widget.NewCard("Connection", "", form))
}

func showError(app fyne.App, window fyne.Window, err error) {
	d := dialog.NewError(err, window)
	d.SetOnClosed(func() {
		app.Quit()
	})
	d.Show()
}
