package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
)

// Key prefixes for different data types
const (
	documentPrefix        = "docrec"
	documentProjectPrefix = "docprj"
	documentIDSeq         = "docrecseq"

	sectionPrefix        = "secrec"
	sectionProjectPrefix = "secprj"
	sectionIDSeq         = "secrecseq"

	itemPrefix        = "itmrec"
	itemProjectPrefix = "itmprj"
	itemSectionPrefix = "itmsec"
	itemIDSeq         = "itmrecseq"

	groupPrefix        = "grprec"
	groupProjectPrefix = "grpprj"
	groupSectionPrefix = "grpsec"
	groupIDSeq         = "grprecseq"

	draftPrefix        = "drfrec"
	draftCounterPrefix = "drfcnt"
	draftIDSeq         = "drfrecseq"

	chunkPrefix        = "chkrec"
	chunkProjectPrefix = "chkprj"

	feedbackPrefix         = "fbkrec"
	feedbackProjectPrefix  = "fbkprj"
	feedbackDocumentPrefix = "fbkdoc"
	feedbackItemPrefix     = "fbkitm"
	feedbackIDSeq          = "fbkrecseq"

	jobPrefix        = "jobrec"
	jobProjectPrefix = "jobprj"
	jobIDSeq         = "jobrecseq"

	messagePrefix        = "msgrec"
	messageProjectPrefix = "msgprj"
	messageIDSeq         = "msgrecseq"

	queueTaskPrefix    = "quetsk"
	queuePendingPrefix = "quepen"
	queueLeasedPrefix  = "quelse"
	queueDeadPrefix    = "quedlq"
	queueIDSeq         = "quetskseq"
)

// makeRecordKey generates a primary key for an entity by ID.
func makeRecordKey(prefix string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", prefix, id))
}

// makeScopeKey generates a composite key for a scope index.
// Format: prefix:scopeID:entityID, with BigEndian IDs so lexicographic
// sort matches numeric sort.
func makeScopeKey(prefix string, scopeID, entityID core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(scopeID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(entityID))
	return buf
}

// makePartialScopeKey generates the prefix covering every entity in a scope.
func makePartialScopeKey(prefix string, scopeID core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(scopeID))
	return buf
}

// makeDraftVersionKey generates a key for a draft version snapshot.
// Format: prefix:groupID:version, BigEndian so iteration yields version order.
func makeDraftVersionKey(groupID core.ID, version int) []byte {
	prefixBytes := []byte(draftPrefix + ":")
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(groupID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(version))
	return buf
}

// makeDraftCounterKey generates the per-group version counter key.
func makeDraftCounterKey(groupID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", draftCounterPrefix, groupID))
}

// makeQueueTaskKey generates the primary key for a queue task.
func makeQueueTaskKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s:%d", queueTaskPrefix, id))
}

// makeQueueTimeKey generates a composite key ordered by time then task ID.
// Used for the pending set (NotBefore) and the leased set (lease expiry).
func makeQueueTimeKey(prefix string, at time.Time, id uint64) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(at.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], id)
	return buf
}

// makeQueueDeadKey generates a key for a dead-lettered task.
func makeQueueDeadKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s:%d", queueDeadPrefix, id))
}
