package models

import "fmt"

// Slot identifies one of the two upload categories.
type Slot int

const (
	SlotPrimary Slot = iota
	SlotSecondary
)

// Slots lists every slot in display order.
var Slots = []Slot{SlotPrimary, SlotSecondary}

// Category is the value sent in the multipart "type" field.
func (s Slot) Category() string {
	if s == SlotSecondary {
		return "dot"
	}
	return "ct"
}

// Suffix is the file extension a selection must carry, including the dot.
func (s Slot) Suffix() string {
	return "." + s.Category()
}

func (s Slot) String() string {
	switch s {
	case SlotPrimary:
		return "primary"
	case SlotSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

// SlotStatus is the upload state of a slot.
type SlotStatus string

const (
	SlotEmpty       SlotStatus = "empty"
	SlotInvalidType SlotStatus = "invalid-type"
	SlotUploading   SlotStatus = "uploading"
	SlotSuccess     SlotStatus = "success"
	SlotError       SlotStatus = "error"
)

// UploadSlot is the state of one upload category.
// FileName is cleared whenever Status is SlotInvalidType or SlotEmpty.
type UploadSlot struct {
	Slot     Slot
	FileName string
	Status   SlotStatus
	Message  string
}
