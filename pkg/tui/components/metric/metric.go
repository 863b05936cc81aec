// Package metric renders label/value widgets (weather, rates, quotes,
// clocks). Each widget type supplies a Decode that flattens its payload
// into fields; the rendering is shared.
package metric

import (
	"encoding/json"
	"fmt"

	"tableflip.dev/dash/pkg/tui/theme"
	"tableflip.dev/dash/pkg/widget"
)

// Field is one rendered label/value row.
type Field struct {
	Label string
	Value string
	Note  string
}

// Decode flattens a widget-type-specific payload into fields.
type Decode func(w widget.Widget, data json.RawMessage) ([]Field, error)

// Renderer adapts a Decode into a registry render function.
func Renderer(decode Decode, th theme.Theme) func(widget.Widget, json.RawMessage, int) []string {
	return func(w widget.Widget, data json.RawMessage, width int) []string {
		if len(data) == 0 {
			return []string{th.Widget.Faint.Render("loading…")}
		}
		fields, err := decode(w, data)
		if err != nil {
			return []string{th.Widget.Error.Render(err.Error())}
		}
		return Render(fields, width, th)
	}
}

// Render draws the fields as aligned rows.
func Render(fields []Field, width int, th theme.Theme) []string {
	labelWidth := 0
	for _, f := range fields {
		if len(f.Label) > labelWidth {
			labelWidth = len(f.Label)
		}
	}
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		line := fmt.Sprintf("%-*s  %s", labelWidth, f.Label, th.Widget.Body.Render(f.Value))
		if f.Note != "" {
			line += " " + th.Widget.Faint.Render(f.Note)
		}
		lines = append(lines, line)
	}
	return lines
}

// DecodeWeather flattens a weather payload.
func DecodeWeather(_ widget.Widget, data json.RawMessage) ([]Field, error) {
	var p struct {
		Location    string  `json:"location"`
		Temperature float64 `json:"temperature"`
		Unit        string  `json:"unit"`
		Condition   string  `json:"condition"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("metric: weather payload: %w", err)
	}
	unit := p.Unit
	if unit == "" {
		unit = "°C"
	}
	return []Field{
		{Label: p.Location, Value: fmt.Sprintf("%.0f%s", p.Temperature, unit), Note: p.Condition},
	}, nil
}

// DecodeExchangeRate flattens a currency pair payload.
func DecodeExchangeRate(_ widget.Widget, data json.RawMessage) ([]Field, error) {
	var p struct {
		Base      string  `json:"base"`
		Quote     string  `json:"quote"`
		Rate      float64 `json:"rate"`
		ChangePct float64 `json:"change_pct"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("metric: exchange rate payload: %w", err)
	}
	return []Field{
		{
			Label: p.Base + "/" + p.Quote,
			Value: fmt.Sprintf("%.4f", p.Rate),
			Note:  fmt.Sprintf("%+.2f%%", p.ChangePct),
		},
	}, nil
}

// DecodeMarket flattens a quote list payload.
func DecodeMarket(_ widget.Widget, data json.RawMessage) ([]Field, error) {
	var p struct {
		Symbols []struct {
			Symbol    string  `json:"symbol"`
			Price     float64 `json:"price"`
			ChangePct float64 `json:"change_pct"`
		} `json:"symbols"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("metric: market payload: %w", err)
	}
	fields := make([]Field, 0, len(p.Symbols))
	for _, s := range p.Symbols {
		fields = append(fields, Field{
			Label: s.Symbol,
			Value: fmt.Sprintf("%.2f", s.Price),
			Note:  fmt.Sprintf("%+.2f%%", s.ChangePct),
		})
	}
	return fields, nil
}

// DecodeClock flattens a timezone clock payload.
func DecodeClock(w widget.Widget, data json.RawMessage) ([]Field, error) {
	var p struct {
		Timezone string `json:"timezone"`
		Time     string `json:"time"`
		Date     string `json:"date"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("metric: clock payload: %w", err)
	}
	label := w.Option("label", p.Timezone)
	return []Field{
		{Label: label, Value: p.Time, Note: p.Date},
	}, nil
}
