// Package browsertest provides an in-memory page for driving the ordering workflow in tests.
package browsertest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Action struct {
	Kind     string
	Selector string
	Value    string
}

// Page is a fake browser page. Every call is recorded as an Action.
type Page struct {
	// VisibleFor is the number of times IsVisible reports a selector as visible
	// before it disappears, a negative count never disappears.
	VisibleFor map[string]int
	// HTML is returned by InnerHTML for the given selector.
	HTML map[string]string
	// Missing selectors fail every operation as if the element was never found.
	Missing map[string]bool
	// Image is written by Screenshot, a small generated image is used when nil.
	Image image.Image

	mutex   sync.Mutex
	actions []Action
}

func New() *Page {
	return &Page{
		VisibleFor: map[string]int{},
		HTML:       map[string]string{},
		Missing:    map[string]bool{},
	}
}

func (p *Page) record(kind, selector, value string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.actions = append(p.actions, Action{Kind: kind, Selector: selector, Value: value})
	if p.Missing[selector] {
		return fmt.Errorf("%s: element %q not found", kind, selector)
	}
	return nil
}

// Actions returns every recorded action, if kinds are given, only actions of those kinds are returned.
func (p *Page) Actions(kinds ...string) []Action {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	var out []Action
	for _, a := range p.actions {
		if len(kinds) == 0 {
			out = append(out, a)
			continue
		}
		for _, k := range kinds {
			if a.Kind == k {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func (p *Page) Goto(url string) error {
	return p.record("goto", url, "")
}

func (p *Page) Click(selector string) error {
	return p.record("click", selector, "")
}

func (p *Page) SelectOption(selector, value string) error {
	return p.record("select", selector, value)
}

func (p *Page) Fill(selector, value string) error {
	return p.record("fill", selector, value)
}

func (p *Page) IsVisible(selector string) (bool, error) {
	err := p.record("is_visible", selector, "")
	if err != nil {
		return false, err
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()
	remaining := p.VisibleFor[selector]
	if remaining == 0 {
		return false, nil
	}
	if remaining > 0 {
		p.VisibleFor[selector] = remaining - 1
	}
	return true, nil
}

func (p *Page) WaitVisible(selector string, timeout time.Duration) error {
	err := p.record("wait_visible", selector, timeout.String())
	if err != nil {
		return fmt.Errorf("timeout %s exceeded: %w", timeout, err)
	}
	return nil
}

func (p *Page) InnerHTML(selector string) (string, error) {
	err := p.record("inner_html", selector, "")
	if err != nil {
		return "", err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	markup, ok := p.HTML[selector]
	if !ok {
		return "", fmt.Errorf("inner_html: element %q not found", selector)
	}
	return markup, nil
}

func (p *Page) Screenshot(selector, path string) error {
	err := p.record("screenshot", selector, path)
	if err != nil {
		return err
	}

	img := p.Image
	if img == nil {
		img = Robot()
	}

	err = os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// Robot generates a small opaque image standing in for a robot preview.
func Robot() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 40, 60))
	for x := 0; x < 40; x++ {
		for y := 0; y < 60; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: uint8(y * 4), B: 160, A: 255})
		}
	}
	return img
}
