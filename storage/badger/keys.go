package badger

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Key prefixes for different data types
const (
	resultPrefix  = "benres"
	summaryPrefix = "bensum"
	runPrefix     = "benrun"
	turnPrefix    = "turn"
	turnIDSeq     = "turnseq"
)

// appendComponent appends a length-prefixed string so that one component
// can never be a prefix of another.
func appendComponent(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// readComponent reads a length-prefixed string from buf.
func readComponent(buf []byte) (string, []byte, bool) {
	if len(buf) < 4 {
		return "", nil, false
	}
	n := int(binary.BigEndian.Uint32(buf))
	buf = buf[4:]
	if len(buf) < n {
		return "", nil, false
	}
	return string(buf[:n]), buf[n:], true
}

// makeRunResultsPrefix generates the prefix of all entries of a run.
// Format: prefix:len(runID)runID
func makeRunResultsPrefix(runID string) []byte {
	return appendComponent([]byte(resultPrefix+":"), runID)
}

// makeResultKey generates a key for one entry of a run.
// Format: prefix:len(runID)runID index
func makeResultKey(runID string, index int) []byte {
	// BigEndian keeps entries in dataset order
	return binary.BigEndian.AppendUint32(makeRunResultsPrefix(runID), uint32(index))
}

// resultIndex extracts the dataset position from a result key.
func resultIndex(key []byte, prefixLen int) (int, bool) {
	if len(key) != prefixLen+4 {
		return 0, false
	}
	return int(binary.BigEndian.Uint32(key[prefixLen:])), true
}

// makeSummaryKey generates a key for the summary of a run.
func makeSummaryKey(runID string) []byte {
	return appendComponent([]byte(summaryPrefix+":"), runID)
}

// makeRunKey generates a key for the run marker.
func makeRunKey(runID string) []byte {
	return appendComponent([]byte(runPrefix+":"), runID)
}

// makeSessionPrefix generates the prefix of all turns of a session.
func makeSessionPrefix(session string) []byte {
	return appendComponent([]byte(turnPrefix+":"), session)
}

// makeTurnKey generates a composite key for a turn.
// Format: prefix:len(session)session timestamp seq
func makeTurnKey(session string, timestamp time.Time, seq uint64) []byte {
	buf := makeSessionPrefix(session)
	// Write in BigEndian order so lexicographic sort works correctly
	buf = binary.BigEndian.AppendUint64(buf, uint64(timestamp.UnixMicro()))
	return binary.BigEndian.AppendUint64(buf, seq)
}

// makeCheckpointKey generates a key for run checkpoints.
func makeCheckpointKey(runID string) []byte {
	return []byte(fmt.Sprintf("%s:chkpt", runID))
}
