package attendance

import (
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoc = time.FixedZone("CST", -6*3600)

func newTestNormalizer(now time.Time) *Normalizer {
	n := NewNormalizer(2*time.Minute, testLoc)
	n.now = func() time.Time { return now }
	return n
}

func TestNormalizer_Normalize(t *testing.T) {
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, testLoc)
	n := newTestNormalizer(now)

	event, err := n.Normalize(attendance.IngestRequest{
		EmployeeID:   " E01 ",
		Kind:         "Entrada",
		Timestamp:    "2024-06-03 08:05:00",
		VerifyMethod: "Fingerprint",
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), event.SequenceNo)
	assert.Equal(t, "E01", event.EmployeeID)
	assert.Equal(t, attendance.KindEntrada, event.Kind)
	assert.True(t, event.Timestamp.Equal(time.Date(2024, 6, 3, 8, 5, 0, 0, testLoc)))
	assert.Equal(t, "fingerprint", event.VerifyMethod)
}

func TestNormalizer_Rejections(t *testing.T) {
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, testLoc)

	cases := []struct {
		name   string
		req    attendance.IngestRequest
		fields []string
	}{
		{
			name:   "empty request",
			req:    attendance.IngestRequest{},
			fields: []string{"employee_id", "kind", "timestamp"},
		},
		{
			name:   "bad employee id",
			req:    attendance.IngestRequest{EmployeeID: "E 01", Kind: "entrada", Timestamp: "2024-06-03T08:00:00-06:00"},
			fields: []string{"employee_id"},
		},
		{
			name:   "unknown kind",
			req:    attendance.IngestRequest{EmployeeID: "E01", Kind: "break", Timestamp: "2024-06-03T08:00:00-06:00"},
			fields: []string{"kind"},
		},
		{
			name:   "unparseable timestamp",
			req:    attendance.IngestRequest{EmployeeID: "E01", Kind: "salida", Timestamp: "yesterday"},
			fields: []string{"timestamp"},
		},
		{
			name:   "beyond clock skew",
			req:    attendance.IngestRequest{EmployeeID: "E01", Kind: "salida", Timestamp: "2024-06-03T09:02:01-06:00"},
			fields: []string{"timestamp"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := newTestNormalizer(now)
			_, err := n.Normalize(tc.req)

			var validationErrs validator.ValidationErrors
			require.ErrorAs(t, err, &validationErrs)
			got := validationErrs.ToMap()
			assert.Len(t, got, len(tc.fields))
			for _, f := range tc.fields {
				assert.Contains(t, got, f)
			}

			// a rejected event does not consume a sequence number
			ok, err := n.Normalize(attendance.IngestRequest{EmployeeID: "E01", Kind: "entrada", Timestamp: "2024-06-03T08:00:00-06:00"})
			require.NoError(t, err)
			assert.Equal(t, uint64(1), ok.SequenceNo)
		})
	}
}

func TestNormalizer_WithinClockSkew(t *testing.T) {
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, testLoc)
	n := newTestNormalizer(now)

	_, err := n.Normalize(attendance.IngestRequest{EmployeeID: "E01", Kind: "entrada", Timestamp: "2024-06-03T09:01:59-06:00"})
	assert.NoError(t, err)
}

func TestNormalizer_SequenceIsMonotonic(t *testing.T) {
	n := newTestNormalizer(time.Date(2024, 6, 3, 9, 0, 0, 0, testLoc))
	n.Seed(41)

	const workers, perWorker = 8, 50
	seqs := make(chan uint64, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				e, err := n.Normalize(attendance.IngestRequest{EmployeeID: "E01", Kind: "entrada", Timestamp: "2024-06-03T08:00:00Z"})
				if err == nil {
					seqs <- e.SequenceNo
				}
			}
		}()
	}
	wg.Wait()
	close(seqs)

	seen := make(map[uint64]bool)
	for s := range seqs {
		assert.Greater(t, s, uint64(41))
		assert.False(t, seen[s], "sequence %d reused", s)
		seen[s] = true
	}
	assert.Len(t, seen, workers*perWorker)

	// seeding backwards never rewinds the counter
	n.Seed(5)
	e, err := n.Normalize(attendance.IngestRequest{EmployeeID: "E01", Kind: "salida", Timestamp: "2024-06-03T08:30:00Z"})
	require.NoError(t, err)
	assert.Equal(t, uint64(41+workers*perWorker+1), e.SequenceNo)
}
