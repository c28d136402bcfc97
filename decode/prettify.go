package decode

import (
	"regexp"

	"github.com/Viatorus/compile-time-printer/encio"
)

// NewPrettifier returns a Prettifier that deletes every match of the remove expressions,
// then replaces every match of the captureRemove expressions with their first capture group.
func NewPrettifier(remove, captureRemove []string) (*Prettifier, error) {
	p := &Prettifier{}
	for _, expr := range remove {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, encio.NewError(encio.ErrBadConfig, err.Error(), 0)
		}
		p.remove = append(p.remove, re)
	}
	for _, expr := range captureRemove {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, encio.NewError(encio.ErrBadConfig, err.Error(), 0)
		}
		if re.NumSubexp() < 1 {
			return nil, encio.NewError(encio.ErrBadConfig, "capture-remove expression "+expr+" has no capture group", 0)
		}
		p.captureRemove = append(p.captureRemove, re)
	}
	return p, nil
}

// Prettifier shortens decoded type names, i.e. dropping package paths.
type Prettifier struct {
	remove        []*regexp.Regexp
	captureRemove []*regexp.Regexp
}

// Prettify returns name with the Prettifier's expressions applied in order.
// A nil Prettifier returns name unchanged.
func (p *Prettifier) Prettify(name string) string {
	if p == nil {
		return name
	}
	for _, re := range p.remove {
		name = re.ReplaceAllString(name, "")
	}
	for _, re := range p.captureRemove {
		name = re.ReplaceAllString(name, "${1}")
	}
	return name
}
