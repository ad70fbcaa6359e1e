package audit

import "fmt"

// watchedFields lists, per kind, the fields that produce a log entry.
// Only the first differing field in this order is reported.
var watchedFields = map[Kind][]string{
	KindUser:  {FieldName, FieldEmail, FieldUsername},
	KindPhoto: {FieldTitle},
	KindAlbum: {FieldName},
}

// WatchedFields returns the priority list for kind.
func WatchedFields(kind Kind) []string {
	return append([]string(nil), watchedFields[kind]...)
}

// Describe returns the log sentence for the first watched field that differs
// between before and after. ok is false when nothing watched changed or the
// snapshots do not describe the same entity.
func Describe(before, after Snapshot) (description string, ok bool) {
	if before.Kind != after.Kind || before.ID != after.ID {
		return "", false
	}

	for _, field := range watchedFields[after.Kind] {
		old, cur := before.Fields[field], after.Fields[field]
		if old == cur {
			continue
		}

		switch after.Kind {
		case KindUser:
			return fmt.Sprintf("USER(%d): User %d changed %s from %q to %q",
				after.ID, after.ID, field, old, cur), true
		case KindPhoto:
			return fmt.Sprintf("PHOTO(%d): User %d changed photo %s from %q to %q",
				after.ID, after.ActorID, field, old, cur), true
		case KindAlbum:
			return fmt.Sprintf("ALBUM(%d): User %d changed album %s from %q to %q",
				after.ID, after.ActorID, field, old, cur), true
		}
	}
	return "", false
}
