package core

import "fmt"

// Detail texts for entries and exits.
const (
	DetailEntry = "new record"
	DetailExit  = "record removed"
)

// Diff compares two record sets by identifier. It never fails: a nil set is
// treated as empty.
//
// Changes are grouped as entries, exits and field changes, each group sorted
// by identifier; field changes of one identifier follow ComparedFields order.
// When an identifier is duplicated within a set, its first record represents it.
func Diff(oldSet, newSet *RecordSet) *DiffReport {
	report := &DiffReport{
		TotalOld:     oldSet.Len(),
		TotalNew:     newSet.Len(),
		AmbiguousOld: oldSet.Ambiguous(),
		AmbiguousNew: newSet.Ambiguous(),
	}

	newIDs := newSet.Identifiers()
	oldIDs := oldSet.Identifiers()

	for _, id := range newIDs {
		if oldSet.Contains(id) {
			continue
		}
		rec, _ := newSet.Lookup(id)
		report.Changes = append(report.Changes, ChangeEntry{
			Identifier: id,
			Name:       rec.Name(),
			Kind:       KindEntry,
			Detail:     DetailEntry,
		})
		report.TotalEntries++
	}

	for _, id := range oldIDs {
		if newSet.Contains(id) {
			continue
		}
		rec, _ := oldSet.Lookup(id)
		report.Changes = append(report.Changes, ChangeEntry{
			Identifier: id,
			Name:       rec.Name(),
			Kind:       KindExit,
			Detail:     DetailExit,
		})
		report.TotalExits++
	}

	for _, id := range oldIDs {
		newRec, ok := newSet.Lookup(id)
		if !ok {
			continue
		}
		oldRec, _ := oldSet.Lookup(id)
		changes := CompareRecords(oldRec, newRec)
		if len(changes) > 0 {
			report.TotalChanged++
			report.Changes = append(report.Changes, changes...)
		}
	}

	return report
}

// CompareRecords returns one FIELD_CHANGE per compared field whose values
// differ. A field is compared only when both records carry it. The name on
// each change comes from the new record, or the old one when the new record
// has no name.
func CompareRecords(oldRec, newRec Record) []ChangeEntry {
	name := newRec.Name()
	if name == "" {
		name = oldRec.Name()
	}
	id := newRec.Identifier()
	if id == "" {
		id = oldRec.Identifier()
	}

	var out []ChangeEntry
	for _, f := range ComparedFields {
		ov, okOld := oldRec[f]
		nv, okNew := newRec[f]
		if !okOld || !okNew || ov == nv {
			continue
		}
		out = append(out, ChangeEntry{
			Identifier: id,
			Name:       name,
			Kind:       KindFieldChange,
			Field:      f,
			OldValue:   ov,
			NewValue:   nv,
			Detail:     fmt.Sprintf("%s -> %s", ov, nv),
		})
	}
	return out
}
