package audio

import (
	"fmt"
	"io"
	"text/template"

	"github.com/gordonklaus/portaudio"
)

var deviceTmpl = template.Must(template.New("").Parse(
	`{{. | len}} host APIs: {{range .}}
	Name:                   {{.Name}}
	{{if .DefaultInputDevice}}Default input device:   {{.DefaultInputDevice.Name}}{{end}}
	{{if .DefaultOutputDevice}}Default output device:  {{.DefaultOutputDevice.Name}}{{end}}
	Devices: {{range .Devices}}
		Name:                      {{.Name}}
		MaxInputChannels:          {{.MaxInputChannels}}
		DefaultLowInputLatency:    {{.DefaultLowInputLatency}}
		DefaultHighInputLatency:   {{.DefaultHighInputLatency}}
		DefaultSampleRate:         {{.DefaultSampleRate}}
	{{end}}
{{end}}`,
))

// HostAPI is the subset of a portaudio host API that PrintDevices renders.
type HostAPI struct {
	Name                string
	DefaultInputDevice  *Device
	DefaultOutputDevice *Device
	Devices             []*Device
}

// Device describes one audio device.
type Device struct {
	Name                    string
	MaxInputChannels        int
	DefaultLowInputLatency  string
	DefaultHighInputLatency string
	DefaultSampleRate       float64
}

// PrintDevices writes the host's audio devices to w.
func PrintDevices(w io.Writer) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	hs, err := portaudio.HostApis()
	if err != nil {
		return fmt.Errorf("list host apis: %w", err)
	}
	return WriteDevices(w, hostAPIs(hs))
}

// WriteDevices renders apis with the device listing template.
func WriteDevices(w io.Writer, apis []HostAPI) error {
	return deviceTmpl.Execute(w, apis)
}

func hostAPIs(hs []*portaudio.HostApiInfo) []HostAPI {
	out := make([]HostAPI, 0, len(hs))
	for _, h := range hs {
		api := HostAPI{
			Name:                h.Name,
			DefaultInputDevice:  device(h.DefaultInputDevice),
			DefaultOutputDevice: device(h.DefaultOutputDevice),
		}
		for _, d := range h.Devices {
			api.Devices = append(api.Devices, device(d))
		}
		out = append(out, api)
	}
	return out
}

func device(d *portaudio.DeviceInfo) *Device {
	if d == nil {
		return nil
	}
	return &Device{
		Name:                    d.Name,
		MaxInputChannels:        d.MaxInputChannels,
		DefaultLowInputLatency:  d.DefaultLowInputLatency.String(),
		DefaultHighInputLatency: d.DefaultHighInputLatency.String(),
		DefaultSampleRate:       d.DefaultSampleRate,
	}
}
