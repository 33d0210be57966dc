package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guestRecord struct {
	Name       string
	Contact    string
	RSVPStatus string
	internal   int
}

type guestView struct {
	Name     string `json:"name"`
	RSVP     string `json:"rsvp"`
	Contact  string `json:"contact"`
	Attended bool   `json:"attended"`
}

func TestProjectorCopiesMatchingFieldsByName(t *testing.T) {
	p := New[guestRecord, guestView]()
	out := p.One(&guestRecord{Name: "An", Contact: "an@example.com", RSVPStatus: "yes", internal: 7})

	assert.Equal(t, "An", out.Name)
	assert.Equal(t, "an@example.com", out.Contact)
	// No source field named RSVP and no transform: stays zero.
	assert.Empty(t, out.RSVP)
}

func TestProjectorTransformOverridesCopy(t *testing.T) {
	p := New[guestRecord, guestView]().
		Transform("RSVP", func(g *guestRecord) any { return g.RSVPStatus }).
		Transform("Attended", func(g *guestRecord) any { return g.RSVPStatus == "yes" })

	out := p.One(&guestRecord{Name: "Binh", RSVPStatus: "yes"})
	assert.Equal(t, "yes", out.RSVP)
	assert.True(t, out.Attended)

	out = p.One(&guestRecord{Name: "Chi", RSVPStatus: "maybe"})
	assert.Equal(t, "maybe", out.RSVP)
	assert.False(t, out.Attended)
}

func TestManyPreservesOrderAndNeverReturnsNil(t *testing.T) {
	p := New[guestRecord, guestView]()

	out := p.Many(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)

	out = p.Many([]guestRecord{{Name: "A"}, {Name: "B"}, {Name: "C"}})
	require.Len(t, out, 3)
	assert.Equal(t, "A", out[0].Name)
	assert.Equal(t, "C", out[2].Name)
}

func TestPageMathAcrossTenRecordsWithLimitFour(t *testing.T) {
	records := make([]guestRecord, 10)
	p := New[guestRecord, guestView]()

	// First page: full, so a next page is assumed.
	page := p.PageOf(records[0:4], 0, 4, nil)
	assert.Equal(t, 4, page.Count)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 4, page.PageSize)
	assert.True(t, page.HasNext)

	// Last page: short, definitely final.
	page = p.PageOf(records[8:10], 8, 4, nil)
	assert.Equal(t, 2, page.Count)
	assert.Equal(t, 3, page.Page)
	assert.False(t, page.HasNext)
}

func TestPageCarriesTotalVerbatim(t *testing.T) {
	total := int64(42)
	page := NewPage([]guestView{{}, {}}, 0, 2, &total)
	require.NotNil(t, page.Total)
	assert.Equal(t, int64(42), *page.Total)

	page = NewPage([]guestView{}, 0, 2, nil)
	assert.Nil(t, page.Total)
}

func TestPageWithZeroLimitNeverReportsNext(t *testing.T) {
	page := NewPage([]guestView{{}, {}, {}}, 0, 0, nil)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.Count)
	assert.False(t, page.HasNext)
}

func TestEmptyPageSerializesAsEmptySlice(t *testing.T) {
	page := NewPage[guestView](nil, 0, 20, nil)
	require.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Count)
	assert.False(t, page.HasNext)
}
