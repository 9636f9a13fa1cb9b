package clinic

import "strings"

// RxNote is the structured form of a clinical note. It is stored on the
// appointment as a single labelled free-text block so that records written
// before this service existed keep parsing; EncodeRxNote and DecodeRxNote are
// the only code that touches that layout.
type RxNote struct {
	ChiefComplaint string
	Diagnosis      string
	Medications    string
	Instructions   string
	FollowUp       string
}

func (n RxNote) Empty() bool {
	return n == RxNote{}
}

// Label strings and order are fixed by stored data. Do not change them.
var rxSections = []struct {
	label string
	get   func(RxNote) string
	set   func(*RxNote, string)
}{
	{"CHIEF COMPLAINT", func(n RxNote) string { return n.ChiefComplaint }, func(n *RxNote, v string) { n.ChiefComplaint = v }},
	{"DIAGNOSIS", func(n RxNote) string { return n.Diagnosis }, func(n *RxNote, v string) { n.Diagnosis = v }},
	{"PRESCRIPTION (Rx)", func(n RxNote) string { return n.Medications }, func(n *RxNote, v string) { n.Medications = v }},
	{"INSTRUCTIONS", func(n RxNote) string { return n.Instructions }, func(n *RxNote, v string) { n.Instructions = v }},
	{"FOLLOW-UP", func(n RxNote) string { return n.FollowUp }, func(n *RxNote, v string) { n.FollowUp = v }},
}

// EncodeRxNote renders the note as labelled sections joined by blank lines.
// Fields that are empty after trimming are omitted entirely.
func EncodeRxNote(n RxNote) string {
	var parts []string
	for _, sec := range rxSections {
		text := strings.TrimSpace(sec.get(n))
		if text == "" {
			continue
		}
		parts = append(parts, sec.label+":\n"+text)
	}
	return strings.Join(parts, "\n\n")
}

// DecodeRxNote parses an encoded block back into its fields. Chunks that do
// not start with a known label are ignored, as are labels that never occur.
// For any note produced by EncodeRxNote whose fields contain no blank lines,
// DecodeRxNote(EncodeRxNote(n)) == n.
func DecodeRxNote(text string) RxNote {
	var n RxNote
	if text == "" {
		return n
	}
	for _, chunk := range strings.Split(text, "\n\n") {
		for i := range rxSections {
			prefix := rxSections[i].label + ":"
			if !strings.HasPrefix(chunk, prefix) {
				continue
			}
			value := strings.TrimPrefix(chunk, prefix)
			value = strings.TrimPrefix(value, "\n")
			rxSections[i].set(&n, value)
			break
		}
	}
	return n
}
