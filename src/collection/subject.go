package collection

import "fmt"

// SubjectKind discriminates who owns the active collection.
type SubjectKind string

const (
	// SubjectLocal is a local browser-profile collection stored on this host.
	SubjectLocal SubjectKind = "local"
	// SubjectUser is the cloud collection of an authenticated user.
	SubjectUser SubjectKind = "user"
	// SubjectShare is a published read-only snapshot.
	SubjectShare SubjectKind = "share"
)

// Subject is the owner context of a collection. Exactly one collection is
// active in memory at a time, matching the current subject.
type Subject struct {
	Kind      SubjectKind
	ProfileID string // set for SubjectLocal
	UserID    string // set for SubjectUser
	ShareID   string // set for SubjectShare
}

// LocalSubject returns a subject for a local profile.
func LocalSubject(profileID string) Subject {
	return Subject{Kind: SubjectLocal, ProfileID: profileID}
}

// UserSubject returns a subject for an authenticated user.
func UserSubject(userID string) Subject {
	return Subject{Kind: SubjectUser, UserID: userID}
}

// ShareSubject returns a subject for a read-only share snapshot.
func ShareSubject(shareID string) Subject {
	return Subject{Kind: SubjectShare, ShareID: shareID}
}

// ReadOnly reports whether mutations against this subject are permitted.
func (s Subject) ReadOnly() bool {
	return s.Kind == SubjectShare
}

// Key returns a stable identifier for the subject, used for logging and for
// tagging in-flight requests so stale responses can be discarded after the
// subject changes.
func (s Subject) Key() string {
	switch s.Kind {
	case SubjectLocal:
		return fmt.Sprintf("local:%s", s.ProfileID)
	case SubjectUser:
		return fmt.Sprintf("user:%s", s.UserID)
	case SubjectShare:
		return fmt.Sprintf("share:%s", s.ShareID)
	}
	return "unknown"
}
