package consolidation

import (
	"fmt"
	"sort"

	"github.com/orcaposte/orcaposte/pkg/budget"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Line is one material of the bill of materials with all its occurrences summed.
type Line struct {
	MaterialId    int
	Code          string
	Name          string
	Unit          string
	UnitPrice     decimal.Decimal
	TotalQuantity decimal.Decimal
	Subtotal      decimal.Decimal
}

type Result struct {
	Lines     []Line
	TotalCost decimal.Decimal
}

// Engine reduces the posts of a budget into a bill of materials. It holds no state
// besides the sort locale and is safe for concurrent use.
type Engine struct {
	locale language.Tag
}

func NewEngine(locale language.Tag) *Engine {
	return &Engine{locale: locale}
}

var defaultEngine = NewEngine(language.BrazilianPortuguese)

// Consolidate runs the pt-BR engine.
func Consolidate(posts []budget.Post) Result {
	return defaultEngine.Consolidate(posts)
}

// Consolidate walks posts in order, visiting every item group line before the loose
// materials of the same post. The first occurrence of a material fixes its unit price;
// later occurrences only add quantity, even when they were captured at another price.
// Lines are sorted by name ignoring case and accents, ties keep first-seen order.
func (e *Engine) Consolidate(posts []budget.Post) Result {
	var lines []Line
	index := map[int]int{}

	add := func(materialId int, quantity, price decimal.Decimal, display *budget.MaterialDisplay) {
		i, seen := index[materialId]
		if !seen {
			line := Line{
				MaterialId:    materialId,
				UnitPrice:     price,
				TotalQuantity: quantity,
			}
			fillDisplay(&line, display)
			line.Subtotal = line.TotalQuantity.Mul(line.UnitPrice)
			index[materialId] = len(lines)
			lines = append(lines, line)
			return
		}
		line := &lines[i]
		line.TotalQuantity = line.TotalQuantity.Add(quantity)
		line.Subtotal = line.TotalQuantity.Mul(line.UnitPrice)
		fillDisplay(line, display)
	}

	for _, post := range posts {
		for _, group := range post.ItemGroups {
			for _, l := range group.Lines {
				add(l.MaterialId, l.Quantity, l.PriceAtAddition, l.Material)
			}
		}
		for _, entry := range post.LooseMaterials {
			add(entry.MaterialId, entry.Quantity, entry.PriceAtAddition, entry.Material)
		}
	}

	total := decimal.Zero
	for i := range lines {
		if lines[i].Name == "" {
			lines[i].Name = UnavailableName(lines[i].MaterialId)
		}
		total = total.Add(lines[i].Subtotal)
	}

	// collate.Collator is not safe for concurrent use.
	collator := collate.New(e.locale, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(lines, func(i, j int) bool {
		return collator.CompareString(lines[i].Name, lines[j].Name) < 0
	})

	if lines == nil {
		lines = []Line{}
	}
	return Result{Lines: lines, TotalCost: total}
}

// UnavailableName is shown for materials without any known display data.
func UnavailableName(materialId int) string {
	return fmt.Sprintf("Material #%d (unavailable)", materialId)
}

// fillDisplay sets only the fields that are still empty.
func fillDisplay(line *Line, display *budget.MaterialDisplay) {
	if display == nil {
		return
	}
	if line.Code == "" {
		line.Code = display.Code
	}
	if line.Name == "" {
		line.Name = display.Name
	}
	if line.Unit == "" {
		line.Unit = display.Unit
	}
}
