// Package ini reads and writes Firefox's profiles.ini.
//
// The file is modelled as an ordered list of sections. Sections whose header
// is Profile<N> are decoded into ProfileSection values; every other section
// is kept as an OpaqueSection holding its raw lines, so content this package
// does not understand is written back exactly as it was read.
package ini

import "regexp"

// Recognized keys of a profile section.
const (
	KeyName       = "Name"
	KeyIsRelative = "IsRelative"
	KeyPath       = "Path"
	KeyDefault    = "Default"
)

var profileHeaderRE = regexp.MustCompile(`^Profile[0-9]+$`)

// Section is either a *ProfileSection or an *OpaqueSection.
type Section interface {
	section()
}

// ProfileSection is a decoded [Profile<N>] section. The index in the header
// is not stored: it is derived from the section's position on encode.
type ProfileSection struct {
	Name       string
	IsRelative bool
	Path       string
	Default    bool

	// Extra holds unrecognized key lines and comments, verbatim and in order.
	Extra []string
}

func (*ProfileSection) section() {}

// OpaqueSection is any section other than a profile section.
type OpaqueSection struct {
	// Header is the raw header line, including brackets.
	Header string
	// Lines is the raw section body with trailing blank lines removed.
	Lines []string
}

func (*OpaqueSection) section() {}

// Document is a parsed profiles.ini.
type Document struct {
	// Preamble holds raw lines found before the first section header.
	Preamble []string
	Sections []Section
}

// Profiles returns the profile sections in document order.
func (d *Document) Profiles() []*ProfileSection {
	var profiles []*ProfileSection
	for _, s := range d.Sections {
		if p, ok := s.(*ProfileSection); ok {
			profiles = append(profiles, p)
		}
	}
	return profiles
}

// FindProfile returns the first profile section with the given name.
func (d *Document) FindProfile(name string) *ProfileSection {
	for _, p := range d.Profiles() {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AppendProfile inserts p right after the last profile section, or at the
// end of the document when there is none.
func (d *Document) AppendProfile(p *ProfileSection) {
	last := -1
	for i, s := range d.Sections {
		if _, ok := s.(*ProfileSection); ok {
			last = i
		}
	}
	if last == -1 {
		d.Sections = append(d.Sections, p)
		return
	}
	d.Sections = append(d.Sections, nil)
	copy(d.Sections[last+2:], d.Sections[last+1:])
	d.Sections[last+1] = p
}

// RemoveProfile removes p from the document. It reports whether p was found.
func (d *Document) RemoveProfile(p *ProfileSection) bool {
	for i, s := range d.Sections {
		if s == Section(p) {
			d.Sections = append(d.Sections[:i], d.Sections[i+1:]...)
			return true
		}
	}
	return false
}

// IsProfileHeader reports whether a section name denotes a profile section.
func IsProfileHeader(name string) bool {
	return profileHeaderRE.MatchString(name)
}
