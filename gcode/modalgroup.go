package gcode

type ModalGroup byte

const (
	ModalGroupNone ModalGroup = iota
	ModalGroupNonModal
	ModalGroupMotion
	ModalGroupDistanceMode
	ModalGroupUnits
	ModalGroupStopping
	ModalGroupPen
	ModalGroupFeedRate
)

// ModalGroup returns the modal group of the word, limited to the
// codes a pen plotter understands.
func (w Word) ModalGroup() ModalGroup {
	switch w.W {
	case 'G':
		switch w.Arg {
		case 4, 28, 92:
			return ModalGroupNonModal
		case 0, 1, 2, 3:
			return ModalGroupMotion
		case 90, 91:
			return ModalGroupDistanceMode
		case 20, 21:
			return ModalGroupUnits
		}
	case 'M':
		switch w.Arg {
		case 0, 1, 2, 30:
			return ModalGroupStopping
		case 300:
			return ModalGroupPen
		}
	case 'F':
		return ModalGroupFeedRate
	}

	return ModalGroupNone
}
