package domain

// LocationPlaceholder is shown for events without a known venue.
const LocationPlaceholder = "N/A"

// Address is the venue of an event. Every field is optional.
type Address struct {
	ID           EntityID `json:"id,omitempty"`
	LocationName string   `json:"locationName,omitempty"`
	Street       string   `json:"street,omitempty"`
	City         string   `json:"city,omitempty"`
	ZipCode      string   `json:"zipCode,omitempty"`
	Country      string   `json:"country,omitempty"`
}

// Event is the canonical in-memory event.
//
// A Summary carries counts only and leaves Organizers, Members and Tasks nil.
// A Detail carries the arrays (possibly empty, never nil). The counts are
// always populated and HasUnfinishedTasks is always derived from them.
type Event struct {
	ID                 EntityID      `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Date               string        `json:"date"`
	LocationName       string        `json:"locationName,omitempty"`
	Address            *Address      `json:"address,omitempty"`
	ParticipantCount   int           `json:"participantCount"`
	TaskCount          int           `json:"taskCount"`
	CompletedTaskCount int           `json:"completedTaskCount"`
	HasUnfinishedTasks bool          `json:"hasUnfinishedTasks"`
	Organizers         []Participant `json:"organizers"`
	Members            []Participant `json:"members"`
	Tasks              []Task        `json:"tasks"`
	CreatedAt          string        `json:"createdAt,omitempty"`
	UpdatedAt          string        `json:"updatedAt,omitempty"`
}

// Key returns the event identifier.
func (e Event) Key() EntityID {
	return e.ID
}

// Clone returns a deep copy of e. Nil slices stay nil.
func (e Event) Clone() Event {
	if e.Address != nil {
		a := *e.Address
		e.Address = &a
	}
	if e.Organizers != nil {
		e.Organizers = append(make([]Participant, 0, len(e.Organizers)), e.Organizers...)
	}
	if e.Members != nil {
		e.Members = append(make([]Participant, 0, len(e.Members)), e.Members...)
	}
	if e.Tasks != nil {
		tasks := make([]Task, len(e.Tasks))
		for i, t := range e.Tasks {
			tasks[i] = t.Clone()
		}
		e.Tasks = tasks
	}
	return e
}

// HasDetail reports whether e carries participant or task arrays.
func (e Event) HasDetail() bool {
	return e.Organizers != nil || e.Members != nil || e.Tasks != nil
}

// RecomputeUnfinished re-derives HasUnfinishedTasks from the counts.
func (e *Event) RecomputeUnfinished() {
	e.HasUnfinishedTasks = e.TaskCount > e.CompletedTaskCount
}

// AdjustCounts applies signed deltas, clamping at zero, and re-derives
// HasUnfinishedTasks.
func (e *Event) AdjustCounts(taskDiff, completedDiff, participantDiff int) {
	e.TaskCount = max(0, e.TaskCount+taskDiff)
	e.CompletedTaskCount = max(0, e.CompletedTaskCount+completedDiff)
	e.ParticipantCount = max(0, e.ParticipantCount+participantDiff)
	e.RecomputeUnfinished()
}

// Participants returns organizers followed by members.
func (e Event) Participants() []Participant {
	out := make([]Participant, 0, len(e.Organizers)+len(e.Members))
	out = append(out, e.Organizers...)
	return append(out, e.Members...)
}

// FindParticipant looks id up among organizers and members.
func (e Event) FindParticipant(id EntityID) (Participant, bool) {
	for _, p := range e.Participants() {
		if p.ID.Equal(id) {
			return p, true
		}
	}
	return Participant{}, false
}

// HasParticipant reports whether id is listed under role.
func (e Event) HasParticipant(role ParticipantRole, id EntityID) bool {
	for _, p := range e.roleList(role) {
		if p.ID.Equal(id) {
			return true
		}
	}
	return false
}

func (e Event) roleList(role ParticipantRole) []Participant {
	if role == RoleOrganizer {
		return e.Organizers
	}
	return e.Members
}

// AddParticipant appends p under role unless the id is already listed there.
// It reports whether the list changed.
func (e *Event) AddParticipant(p Participant, role ParticipantRole) bool {
	if e.HasParticipant(role, p.ID) {
		return false
	}
	p.Role = role
	if role == RoleOrganizer {
		e.Organizers = append(e.Organizers, p)
	} else {
		e.Members = append(e.Members, p)
	}
	return true
}

// RemoveParticipant drops id from the role list. It reports whether the
// list changed.
func (e *Event) RemoveParticipant(id EntityID, role ParticipantRole) bool {
	list := e.roleList(role)
	if list == nil {
		return false
	}
	kept := make([]Participant, 0, len(list))
	for _, p := range list {
		if !p.ID.Equal(id) {
			kept = append(kept, p)
		}
	}
	if role == RoleOrganizer {
		e.Organizers = kept
	} else {
		e.Members = kept
	}
	return len(kept) != len(list)
}

// IsParticipant reports whether id is an organizer or member.
func (e Event) IsParticipant(id EntityID) bool {
	return e.HasParticipant(RoleOrganizer, id) || e.HasParticipant(RoleMember, id)
}

// Merge overlays a server payload onto e. Counts absent from the payload are
// kept, detail arrays are never dropped, and HasUnfinishedTasks is re-derived.
func (e *Event) Merge(p EventPayload) {
	if !p.ID.IsZero() {
		e.ID = p.ID
	}
	if p.Title != "" {
		e.Title = p.Title
	}
	if p.Description != "" {
		e.Description = p.Description
	}
	if p.Date != "" {
		e.Date = p.Date
	}
	if p.Address != nil {
		a := *p.Address
		e.Address = &a
	}
	if loc := p.location(); loc != "" {
		e.LocationName = loc
	}
	if p.ParticipantCount != nil {
		e.ParticipantCount = *p.ParticipantCount
	}
	if p.TaskCount != nil {
		e.TaskCount = *p.TaskCount
	}
	if p.CompletedTaskCount != nil {
		e.CompletedTaskCount = *p.CompletedTaskCount
	}
	if p.Organizers != nil {
		e.Organizers = append([]Participant{}, p.Organizers...)
	}
	if p.Members != nil {
		e.Members = append([]Participant{}, p.Members...)
	}
	if p.Tasks != nil {
		e.Tasks = normalizeTasks(p.Tasks, p.ID)
	}
	if p.CreatedAt != "" {
		e.CreatedAt = p.CreatedAt
	}
	if p.UpdatedAt != "" {
		e.UpdatedAt = p.UpdatedAt
	}
	e.RecomputeUnfinished()
}

// ApplyInput writes the non-empty whitelisted fields of in: title,
// description, date, location name and address parts.
func (e *Event) ApplyInput(in EventInput) {
	if in.Title != "" {
		e.Title = in.Title
	}
	if in.Description != "" {
		e.Description = in.Description
	}
	if in.Date != "" {
		e.Date = in.Date
	}

	if in.LocationName == "" && in.Street == "" && in.City == "" && in.ZipCode == "" && in.Country == "" {
		return
	}
	if e.Address == nil {
		e.Address = &Address{}
	}
	if in.LocationName != "" {
		e.Address.LocationName = in.LocationName
		e.LocationName = in.LocationName
	}
	if in.Street != "" {
		e.Address.Street = in.Street
	}
	if in.City != "" {
		e.Address.City = in.City
	}
	if in.ZipCode != "" {
		e.Address.ZipCode = in.ZipCode
	}
	if in.Country != "" {
		e.Address.Country = in.Country
	}
}

// EventPayload is an event as the backend sends it: summary and detail
// responses share the shape but leave different fields out.
type EventPayload struct {
	ID                 EntityID      `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Date               string        `json:"date"`
	LocationName       string        `json:"locationName,omitempty"`
	Address            *Address      `json:"address,omitempty"`
	ParticipantCount   *int          `json:"participantCount,omitempty"`
	TaskCount          *int          `json:"taskCount,omitempty"`
	CompletedTaskCount *int          `json:"completedTaskCount,omitempty"`
	HasUnfinishedTasks *bool         `json:"hasUnfinishedTasks,omitempty"`
	Organizers         []Participant `json:"organizers,omitempty"`
	Members            []Participant `json:"members,omitempty"`
	Tasks              []Task        `json:"tasks,omitempty"`
	CreatedAt          string        `json:"createdAt,omitempty"`
	UpdatedAt          string        `json:"updatedAt,omitempty"`
}

func (p EventPayload) location() string {
	if p.Address != nil && p.Address.LocationName != "" {
		return p.Address.LocationName
	}
	return p.LocationName
}

// HasOrganizer reports whether id is among the payload's organizers.
func (p EventPayload) HasOrganizer(id EntityID) bool {
	for _, o := range p.Organizers {
		if o.ID.Equal(id) {
			return true
		}
	}
	return false
}

// Normalize projects the payload to the canonical Event. Missing counts are
// derived from the arrays; HasUnfinishedTasks is always recomputed.
func (p EventPayload) Normalize() Event {
	e := Event{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Date:         p.Date,
		LocationName: p.location(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if e.LocationName == "" {
		e.LocationName = LocationPlaceholder
	}
	if p.Address != nil {
		a := *p.Address
		e.Address = &a
	}
	if p.Organizers != nil {
		e.Organizers = append([]Participant{}, p.Organizers...)
	}
	if p.Members != nil {
		e.Members = append([]Participant{}, p.Members...)
	}
	if p.Tasks != nil {
		e.Tasks = normalizeTasks(p.Tasks, p.ID)
	}

	if p.ParticipantCount != nil {
		e.ParticipantCount = *p.ParticipantCount
	} else {
		e.ParticipantCount = len(p.Organizers) + len(p.Members)
	}
	if p.TaskCount != nil {
		e.TaskCount = *p.TaskCount
	} else {
		e.TaskCount = len(p.Tasks)
	}
	if p.CompletedTaskCount != nil {
		e.CompletedTaskCount = *p.CompletedTaskCount
	} else {
		for _, t := range p.Tasks {
			if t.Completed {
				e.CompletedTaskCount++
			}
		}
	}
	e.RecomputeUnfinished()
	return e
}

// Payload converts a canonical event back to its wire shape.
func (e Event) Payload() EventPayload {
	p := EventPayload{
		ID:                 e.ID,
		Title:              e.Title,
		Description:        e.Description,
		Date:               e.Date,
		LocationName:       e.LocationName,
		ParticipantCount:   ptr(e.ParticipantCount),
		TaskCount:          ptr(e.TaskCount),
		CompletedTaskCount: ptr(e.CompletedTaskCount),
		HasUnfinishedTasks: ptr(e.HasUnfinishedTasks),
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
	c := e.Clone()
	p.Address = c.Address
	p.Organizers = c.Organizers
	p.Members = c.Members
	p.Tasks = c.Tasks
	return p
}

func ptr[T any](v T) *T {
	return &v
}

func normalizeTasks(in []Task, eventID EntityID) []Task {
	out := make([]Task, len(in))
	for i, t := range in {
		t = t.Clone()
		t.Normalize()
		if t.EventID.IsZero() {
			t.EventID = eventID
		}
		out[i] = t
	}
	return out
}

// EventInput is the flat form used to create or update an event.
type EventInput struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	Date         string `json:"date,omitempty"`
	LocationName string `json:"locationName,omitempty"`
	Street       string `json:"street,omitempty"`
	City         string `json:"city,omitempty"`
	ZipCode      string `json:"zipCode,omitempty"`
	Country      string `json:"country,omitempty"`
}

// Address returns the address parts of the input.
func (in EventInput) Address() Address {
	return Address{
		LocationName: in.LocationName,
		Street:       in.Street,
		City:         in.City,
		ZipCode:      in.ZipCode,
		Country:      in.Country,
	}
}

// FindEvent returns the index of the event with id in events, or -1.
func FindEvent(events []Event, id EntityID) int {
	for i := range events {
		if events[i].ID.Equal(id) {
			return i
		}
	}
	return -1
}
