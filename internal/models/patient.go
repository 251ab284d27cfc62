package models

// Patient is a bed occupant. A patient occupies at most one bed and a bed
// holds at most one patient; both sides are maintained at assignment time.
type Patient struct {
	ID        string `json:"id"` // UUID
	Name      string `json:"name"`
	Bed       string `json:"bed,omitempty"` // bed number, empty when unassigned
	Room      string `json:"room"`
	Condition string `json:"condition,omitempty"`
	Age       int    `json:"age"`
	Gender    string `json:"gender,omitempty"`
	Admitted  string `json:"admitted,omitempty"`
}
