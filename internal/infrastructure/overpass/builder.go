package overpass

import (
	"fmt"
	"strings"
	"time"

	"github.com/SnapyBara/snapybara-geo/internal/pkg/utils"
)

// Query - готовый Overpass QL запрос. Timeout дублирует клаузу [timeout:N]
// внутри QL, чтобы клиентский дедлайн совпадал с серверным.
type Query struct {
	QL      string
	Timeout time.Duration
}

// CategoryGroup - группа тег-селекторов, запрашиваемая отдельным подзапросом
// при split-стратегии. Порядок групп задаёт приоритет при слиянии:
// дубликаты подавляются в пользу более ранней группы.
type CategoryGroup struct {
	Name      string
	Selectors []string
}

// Таймауты по сложности запроса
const (
	timeoutFull     = 25 * time.Second
	timeoutMedium   = 15 * time.Second
	timeoutCategory = 10 * time.Second
	timeoutLimited  = 5 * time.Second
	timeoutCount    = 5 * time.Second
)

const (
	mediumResultCap  = 150
	categoryCap      = 100
	limitedResultCap = 50
)

// Таксономия фотогеничных POI. Селекторы - готовые QL фильтры тегов.
var categoryGroups = []CategoryGroup{
	{
		Name: "historic",
		Selectors: []string{
			`["historic"~"monument|castle|ruins|memorial|archaeological_site|fort|city_gate|citywalls"]`,
		},
	},
	{
		Name: "tourism",
		Selectors: []string{
			`["tourism"~"viewpoint|attraction|artwork|museum"]`,
			`["photo"]`,
		},
	},
	{
		Name: "leisure",
		Selectors: []string{
			`["leisure"~"park|garden"]["name"]`,
			`["place"="square"]`,
		},
	},
	{
		Name: "religious_infrastructure",
		Selectors: []string{
			`["amenity"~"place_of_worship|fountain"]`,
			`["man_made"~"lighthouse|tower|bridge|windmill"]`,
			`["building"~"cathedral|church|chapel|palace"]`,
		},
	},
	{
		Name: "natural",
		Selectors: []string{
			`["natural"~"peak|waterfall|cliff|beach|spring"]`,
		},
	},
}

// Урезанный набор для fallback-запроса
var limitedSelectors = []string{
	`["historic"~"monument|castle"]`,
	`["tourism"="viewpoint"]`,
}

// Средний по широте набор для одиночного запроса с капом
var mediumSelectors = []string{
	`["historic"~"monument|castle|ruins|memorial"]`,
	`["tourism"~"viewpoint|attraction|artwork"]`,
	`["leisure"~"park|garden"]["name"]`,
	`["natural"~"peak|waterfall|cliff"]`,
	`["man_made"="lighthouse"]`,
}

// Builder строит Overpass QL запросы под область поиска
type Builder struct{}

func NewBuilder() Builder {
	return Builder{}
}

// Groups возвращает группы категорий в порядке приоритета слияния
func (Builder) Groups() []CategoryGroup {
	return categoryGroups
}

// Full - полный запрос без капа результатов для малых радиусов;
// размер области сама его ограничивает
func (b Builder) Full(bbox utils.BBox) Query {
	var selectors []string
	for _, g := range categoryGroups {
		selectors = append(selectors, g.Selectors...)
	}
	return Query{
		QL:      b.compose(selectors, bbox, timeoutFull, 0),
		Timeout: timeoutFull,
	}
}

// Medium - одиночный запрос с меньшим числом тег-классов и капом
func (b Builder) Medium(bbox utils.BBox) Query {
	return Query{
		QL:      b.compose(mediumSelectors, bbox, timeoutMedium, mediumResultCap),
		Timeout: timeoutMedium,
	}
}

// Limited - минимальный fallback-запрос с коротким таймаутом
func (b Builder) Limited(bbox utils.BBox) Query {
	return Query{
		QL:      b.compose(limitedSelectors, bbox, timeoutLimited, limitedResultCap),
		Timeout: timeoutLimited,
	}
}

// Category - подзапрос одной группы для split-стратегии
func (b Builder) Category(group CategoryGroup, bbox utils.BBox) Query {
	return Query{
		QL:      b.compose(group.Selectors, bbox, timeoutCategory, categoryCap),
		Timeout: timeoutCategory,
	}
}

// Count - только количество объектов, без самих элементов
func (b Builder) Count(bbox utils.BBox) Query {
	var selectors []string
	for _, g := range categoryGroups {
		selectors = append(selectors, g.Selectors...)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[out:json][timeout:%d];\n(\n", int(timeoutCount.Seconds()))
	b.writeStatements(&sb, selectors, bbox)
	sb.WriteString(");\nout count;")

	return Query{
		QL:      sb.String(),
		Timeout: timeoutCount,
	}
}

func (b Builder) compose(selectors []string, bbox utils.BBox, timeout time.Duration, limit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[out:json][timeout:%d];\n(\n", int(timeout.Seconds()))
	b.writeStatements(&sb, selectors, bbox)
	if limit > 0 {
		fmt.Fprintf(&sb, ");\nout center %d;", limit)
	} else {
		sb.WriteString(");\nout center;")
	}
	return sb.String()
}

func (Builder) writeStatements(sb *strings.Builder, selectors []string, bbox utils.BBox) {
	box := bboxString(bbox)
	for _, sel := range selectors {
		fmt.Fprintf(sb, "  node%s(%s);\n", sel, box)
		fmt.Fprintf(sb, "  way%s(%s);\n", sel, box)
	}
}

// bboxString - порядок Overpass: юг, запад, север, восток
func bboxString(bbox utils.BBox) string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", bbox.South, bbox.West, bbox.North, bbox.East)
}
