package core

// LookupIdentifier reports what happened to a single person between the two
// rosters. The raw id is reduced to its digits before the lookup, so "RE 012345"
// finds "012345".
func LookupIdentifier(id string, oldSet, newSet *RecordSet) LookupResult {
	id = NormalizeIdentifier(id)
	res := LookupResult{Identifier: id, Status: LookupNotFound}
	if id == "" {
		return res
	}

	oldRec, inOld := oldSet.Lookup(id)
	newRec, inNew := newSet.Lookup(id)

	switch {
	case inOld && inNew:
		res.Status = LookupChanged
		res.Old = oldRec
		res.New = newRec
		res.Changes = CompareRecords(oldRec, newRec)
	case inNew:
		res.Status = LookupNewEntry
		res.New = newRec
	case inOld:
		res.Status = LookupExit
		res.Old = oldRec
	}
	return res
}
