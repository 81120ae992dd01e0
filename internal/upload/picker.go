// Package upload provides a standalone single-file picker: one
// selection at a time, a configurable size ceiling, and a callback on
// acceptance. It touches no storage or network; persisting an accepted
// file is the caller's business.
package upload

import (
	"errors"
	"fmt"
)

// File describes a candidate file. Content stays with the caller.
type File struct {
	Name        string
	Size        int64
	ContentType string
}

type Config struct {
	// Accept is a MIME/extension filter string passed through to the
	// consumer (e.g. ".pdf,image/*"). The picker does not enforce it.
	Accept string
	// MaxSizeMB is the size ceiling in megabytes.
	MaxSizeMB int
	// OnFileSelect fires exactly once per accepted file.
	OnFileSelect func(File)
}

// Picker holds at most one selected file. It runs on a single event
// thread and is not safe for concurrent use.
type Picker struct {
	cfg      Config
	selected *File
	errMsg   string
}

func NewPicker(cfg Config) *Picker {
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	return &Picker{cfg: cfg}
}

// Select validates and adopts f. An oversize file is rejected with a
// displayed error naming the limit and does not replace the current
// selection. Acceptance clears any prior error and fires the callback.
func (p *Picker) Select(f File) error {
	if f.Size > int64(p.cfg.MaxSizeMB)*1024*1024 {
		p.errMsg = fmt.Sprintf("file size exceeds the %d MB limit", p.cfg.MaxSizeMB)
		return errors.New(p.errMsg)
	}
	p.errMsg = ""
	p.selected = &f
	if p.cfg.OnFileSelect != nil {
		p.cfg.OnFileSelect(f)
	}
	return nil
}

// Remove clears the current selection and any displayed error,
// resetting the picker to its initial state.
func (p *Picker) Remove() {
	p.selected = nil
	p.errMsg = ""
}

// Selected returns the current selection, if any.
func (p *Picker) Selected() (File, bool) {
	if p.selected == nil {
		return File{}, false
	}
	return *p.selected, true
}

// Err returns the displayed error message, empty when none.
func (p *Picker) Err() string { return p.errMsg }

// Accept returns the configured filter string.
func (p *Picker) Accept() string { return p.cfg.Accept }

// MaxSizeMB returns the configured ceiling.
func (p *Picker) MaxSizeMB() int { return p.cfg.MaxSizeMB }
