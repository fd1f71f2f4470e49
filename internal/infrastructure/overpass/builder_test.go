package overpass

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SnapyBara/snapybara-geo/internal/pkg/utils"
)

func testBBox() utils.BBox {
	return utils.BBox{North: 48.90, South: 48.80, East: 2.40, West: 2.20}
}

func TestBuilder_Full(t *testing.T) {
	b := NewBuilder()
	q := b.Full(testBBox())

	assert.Equal(t, timeoutFull, q.Timeout)
	assert.True(t, strings.HasPrefix(q.QL, "[out:json][timeout:25];"))
	assert.True(t, strings.HasSuffix(q.QL, "out center;"))

	// Полный запрос не ограничивает число результатов
	assert.NotContains(t, q.QL, "out center 1")

	// Все группы категорий присутствуют
	assert.Contains(t, q.QL, `"historic"~`)
	assert.Contains(t, q.QL, `"tourism"~`)
	assert.Contains(t, q.QL, `"natural"~`)
	assert.Contains(t, q.QL, `"amenity"~`)
	assert.Contains(t, q.QL, `["photo"]`)
}

func TestBuilder_Medium(t *testing.T) {
	b := NewBuilder()
	q := b.Medium(testBBox())

	assert.Equal(t, timeoutMedium, q.Timeout)
	assert.Contains(t, q.QL, "[timeout:15]")
	assert.Contains(t, q.QL, fmt.Sprintf("out center %d;", mediumResultCap))
}

func TestBuilder_Limited(t *testing.T) {
	b := NewBuilder()
	q := b.Limited(testBBox())

	assert.Equal(t, timeoutLimited, q.Timeout)
	assert.Contains(t, q.QL, "[timeout:5]")
	assert.Contains(t, q.QL, fmt.Sprintf("out center %d;", limitedResultCap))

	// Fallback заметно меньше полного запроса
	full := b.Full(testBBox())
	assert.Less(t, len(q.QL), len(full.QL))
}

func TestBuilder_Category(t *testing.T) {
	b := NewBuilder()
	groups := b.Groups()
	require.NotEmpty(t, groups)

	q := b.Category(groups[0], testBBox())

	assert.Equal(t, timeoutCategory, q.Timeout)
	assert.Contains(t, q.QL, fmt.Sprintf("out center %d;", categoryCap))
	assert.Contains(t, q.QL, groups[0].Selectors[0])

	// Селекторы других групп не попадают в подзапрос
	assert.NotContains(t, q.QL, `"natural"~`)
}

func TestBuilder_Count(t *testing.T) {
	b := NewBuilder()
	q := b.Count(testBBox())

	assert.Equal(t, timeoutCount, q.Timeout)
	assert.True(t, strings.HasSuffix(q.QL, "out count;"))
	assert.NotContains(t, q.QL, "out center")
}

func TestBuilder_BBoxOrder(t *testing.T) {
	// Порядок Overpass: юг, запад, север, восток
	q := NewBuilder().Limited(testBBox())
	assert.Contains(t, q.QL, "(48.800000,2.200000,48.900000,2.400000)")
}

func TestBuilder_NodeAndWayStatements(t *testing.T) {
	q := NewBuilder().Limited(testBBox())

	for _, sel := range limitedSelectors {
		assert.Contains(t, q.QL, "node"+sel)
		assert.Contains(t, q.QL, "way"+sel)
	}
}

func TestBuilder_GroupOrderIsStable(t *testing.T) {
	// Порядок групп задаёт приоритет слияния split-результатов
	groups := NewBuilder().Groups()
	require.Len(t, groups, 5)
	assert.Equal(t, "historic", groups[0].Name)
	assert.Equal(t, "tourism", groups[1].Name)
	assert.Equal(t, "natural", groups[4].Name)
}
