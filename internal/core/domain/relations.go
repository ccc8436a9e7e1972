package domain

import "time"

// Scheduling is a vaccination appointment booked for a user.
type Scheduling struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	UserID      string    `json:"userId" bson:"userId"`
	VaccineID   string    `json:"vaccineId" bson:"vaccineId"`
	ScheduledAt time.Time `json:"scheduledAt" bson:"scheduledAt"`
	Dose        int       `json:"dose" bson:"dose"`
	Status      string    `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// VaccineApplication records a dose given to a user by a nurse.
type VaccineApplication struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	ReceivedByID string    `json:"receivedById" bson:"receivedById"`
	AppliedByID  string    `json:"appliedById" bson:"appliedById"`
	VaccineID    string    `json:"vaccineId" bson:"vaccineId"`
	Dose         int       `json:"dose" bson:"dose"`
	Batch        string    `json:"batch" bson:"batch"`
	AppliedAt    time.Time `json:"appliedAt" bson:"appliedAt"`
}

// Notification is a message addressed to a user.
type Notification struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	UserID    string    `json:"userId" bson:"userId"`
	Title     string    `json:"title" bson:"title"`
	Message   string    `json:"message" bson:"message"`
	IsRead    bool      `json:"isRead" bson:"isRead"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// UserWithRelations is a user together with its scheduling data and unread
// notifications, newest first.
type UserWithRelations struct {
	*User
	SchedulingsReceived   []*Scheduling         `json:"schedulingsReceived"`
	ApplicationsReceived  []*VaccineApplication `json:"applicationsReceived"`
	ApplicationsPerformed []*VaccineApplication `json:"applicationsPerformed"`
	Notifications         []*Notification       `json:"notifications"`
}

// Profile is the password-free projection of UserWithRelations.
type Profile struct {
	*UserResponse
	SchedulingsReceived   []*Scheduling         `json:"schedulingsReceived"`
	ApplicationsReceived  []*VaccineApplication `json:"applicationsReceived"`
	ApplicationsPerformed []*VaccineApplication `json:"applicationsPerformed"`
	Notifications         []*Notification       `json:"notifications"`
}

// ToProfile projects u into a Profile.
func (u *UserWithRelations) ToProfile() *Profile {
	return &Profile{
		UserResponse:          u.User.ToResponse(),
		SchedulingsReceived:   u.SchedulingsReceived,
		ApplicationsReceived:  u.ApplicationsReceived,
		ApplicationsPerformed: u.ApplicationsPerformed,
		Notifications:         u.Notifications,
	}
}
