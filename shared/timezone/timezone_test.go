package timezone_test

import (
	"hostel/shared/timezone"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() { timezone.Init("UTC") })

	assert.Equal(t, time.UTC, timezone.Init(""))
	assert.Equal(t, time.UTC, timezone.Init("Mars/Olympus_Mons"))

	loc := timezone.Init("Asia/Kolkata")
	assert.Equal(t, "Asia/Kolkata", loc.String())
	assert.Equal(t, loc, timezone.GetLocation())
	assert.Equal(t, loc, timezone.Now().Location())
}

func TestParseAndFormat(t *testing.T) {
	t.Cleanup(func() { timezone.Init("UTC") })
	timezone.Init("Asia/Kolkata")

	parsed, err := timezone.Parse("2006-01-02", "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T00:00:00+05:30", parsed.Format(time.RFC3339))

	utc := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-01 05:30", timezone.Format(utc, "2006-01-02 15:04"))
	assert.Equal(t, "Asia/Kolkata", timezone.ToAppTime(utc).Location().String())

	_, err = timezone.Parse("2006-01-02", "01/06/2024")
	assert.Error(t, err)
}
