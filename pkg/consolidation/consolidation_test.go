package consolidation

import (
	"testing"

	"github.com/orcaposte/orcaposte/pkg/budget"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func display(code, name, unit string) *budget.MaterialDisplay {
	return &budget.MaterialDisplay{Code: code, Name: name, Unit: unit}
}

func groupLine(materialId int, quantity, price string, material *budget.MaterialDisplay) budget.GroupMaterialLine {
	return budget.GroupMaterialLine{MaterialId: materialId, Quantity: dec(quantity), PriceAtAddition: dec(price), Material: material}
}

func loose(materialId int, quantity, price string, material *budget.MaterialDisplay) budget.LooseMaterialEntry {
	return budget.LooseMaterialEntry{MaterialId: materialId, Quantity: dec(quantity), PriceAtAddition: dec(price), Material: material}
}

func postWithGroup(lines ...budget.GroupMaterialLine) budget.Post {
	return budget.Post{ItemGroups: []budget.ItemGroupInstance{{Name: "Kit", Lines: lines}}}
}

func postWithLoose(entries ...budget.LooseMaterialEntry) budget.Post {
	return budget.Post{LooseMaterials: entries}
}

func TestConsolidate_Aggregation(t *testing.T) {
	t.Run("should sum quantities and keep first seen price", func(t *testing.T) {
		// given
		m := display("M1", "Cabo", "M")
		posts := []budget.Post{
			postWithGroup(groupLine(1, "2", "10", m)),
			postWithLoose(loose(1, "3", "12", m)),
		}

		// when
		result := Consolidate(posts)

		// then
		require.Len(t, result.Lines, 1)
		line := result.Lines[0]
		assert.Equal(t, 1, line.MaterialId)
		assert.True(t, line.TotalQuantity.Equal(dec("5")))
		assert.True(t, line.UnitPrice.Equal(dec("10")))
		assert.True(t, line.Subtotal.Equal(dec("50")))
		assert.True(t, result.TotalCost.Equal(dec("50")))
	})

	t.Run("should visit item groups before loose materials of the same post", func(t *testing.T) {
		// given
		m := display("M1", "Cabo", "M")
		post := budget.Post{
			LooseMaterials: []budget.LooseMaterialEntry{loose(1, "1", "99", m)},
			ItemGroups: []budget.ItemGroupInstance{
				{Lines: []budget.GroupMaterialLine{groupLine(1, "1", "4", m)}},
			},
		}

		// when
		result := Consolidate([]budget.Post{post})

		// then
		require.Len(t, result.Lines, 1)
		assert.True(t, result.Lines[0].UnitPrice.Equal(dec("4")))
		assert.True(t, result.Lines[0].Subtotal.Equal(dec("8")))
	})

	t.Run("should aggregate across groups of the same post", func(t *testing.T) {
		m := display("M1", "Cabo", "M")
		post := budget.Post{ItemGroups: []budget.ItemGroupInstance{
			{Lines: []budget.GroupMaterialLine{groupLine(1, "1", "2", m)}},
			{Lines: []budget.GroupMaterialLine{groupLine(1, "4", "3", m), groupLine(2, "1", "1", display("M2", "Alça", "UN"))}},
		}}

		result := Consolidate([]budget.Post{post})

		require.Len(t, result.Lines, 2)
		cable := result.Lines[1]
		assert.Equal(t, "Cabo", cable.Name)
		assert.True(t, cable.TotalQuantity.Equal(dec("5")))
		assert.True(t, cable.Subtotal.Equal(dec("10")))
		assert.True(t, result.TotalCost.Equal(dec("11")))
	})

	t.Run("should support fractional quantities exactly", func(t *testing.T) {
		m := display("CB", "Cabo multiplexado", "M")
		posts := []budget.Post{
			postWithLoose(loose(1, "12.35", "7.10", m)),
			postWithLoose(loose(1, "0.65", "7.10", m)),
			postWithGroup(groupLine(2, "0.1", "0.2", display("X", "Xis", "UN"))),
		}

		result := Consolidate(posts)

		require.Len(t, result.Lines, 2)
		assert.True(t, result.Lines[0].TotalQuantity.Equal(dec("13")))
		assert.True(t, result.Lines[0].Subtotal.Equal(dec("92.3")))
		assert.True(t, result.Lines[1].Subtotal.Equal(dec("0.02")))
		assert.True(t, result.TotalCost.Equal(dec("92.32")))
	})
}

func TestConsolidate_EmptyInput(t *testing.T) {
	tests := []struct {
		name  string
		posts []budget.Post
	}{
		{"nil posts", nil},
		{"no posts", []budget.Post{}},
		{"posts without materials", []budget.Post{{Name: "P1"}, {Name: "P2", ItemGroups: []budget.ItemGroupInstance{{Name: "Empty"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Consolidate(tt.posts)

			assert.NotNil(t, result.Lines)
			assert.Empty(t, result.Lines)
			assert.True(t, result.TotalCost.IsZero())
		})
	}
}

func TestConsolidate_Idempotence(t *testing.T) {
	// given
	posts := []budget.Post{
		postWithGroup(groupLine(3, "1", "1", display("C", "cabo", "M")), groupLine(1, "2", "3", display("A", "Alça", "UN"))),
		postWithLoose(loose(2, "1.5", "2", display("B", "Cabo", "M")), loose(3, "1", "5", display("C", "cabo", "M"))),
	}

	// when
	first := Consolidate(posts)
	second := Consolidate(posts)

	// then
	assert.Equal(t, first, second)
}

func TestConsolidate_SortOrder(t *testing.T) {
	t.Run("should sort by name ignoring case and accents", func(t *testing.T) {
		// given
		posts := []budget.Post{postWithLoose(
			loose(1, "1", "1", display("", "parafuso", "")),
			loose(2, "1", "1", display("", "Ângulo", "")),
			loose(3, "1", "1", display("", "cruzeta", "")),
			loose(4, "1", "1", display("", "Abraçadeira", "")),
			loose(5, "1", "1", display("", "Conector", "")),
		)}

		// when
		result := Consolidate(posts)

		// then
		names := make([]string, 0, len(result.Lines))
		for _, line := range result.Lines {
			names = append(names, line.Name)
		}
		assert.Equal(t, []string{"Abraçadeira", "Ângulo", "Conector", "cruzeta", "parafuso"}, names)
	})

	t.Run("should keep first seen order for names equal under collation", func(t *testing.T) {
		posts := []budget.Post{postWithLoose(
			loose(7, "1", "1", display("", "Cabo", "")),
			loose(3, "1", "1", display("", "cabo", "")),
			loose(5, "1", "1", display("", "CABO", "")),
		)}

		result := Consolidate(posts)

		require.Len(t, result.Lines, 3)
		assert.Equal(t, 7, result.Lines[0].MaterialId)
		assert.Equal(t, 3, result.Lines[1].MaterialId)
		assert.Equal(t, 5, result.Lines[2].MaterialId)
	})

	t.Run("should be non decreasing for any insertion order", func(t *testing.T) {
		names := []string{"Poste DT", "isolador", "Élo fusível", "arruela", "Chave", "olhal", "Haste", "eletroduto"}
		for shift := range names {
			var entries []budget.LooseMaterialEntry
			for i := range names {
				id := (i + shift) % len(names)
				entries = append(entries, loose(id+1, "1", "1", display("", names[id], "")))
			}

			result := Consolidate([]budget.Post{postWithLoose(entries...)})

			collator := collate.New(language.BrazilianPortuguese, collate.IgnoreCase, collate.IgnoreDiacritics)
			for i := 1; i < len(result.Lines); i++ {
				assert.LessOrEqual(t, collator.CompareString(result.Lines[i-1].Name, result.Lines[i].Name), 0)
			}
		}
	})
}

func TestConsolidate_MissingDisplayData(t *testing.T) {
	t.Run("should fall back to unavailable name", func(t *testing.T) {
		result := Consolidate([]budget.Post{postWithLoose(loose(42, "2", "1.5", nil))})

		require.Len(t, result.Lines, 1)
		line := result.Lines[0]
		assert.Equal(t, "Material #42 (unavailable)", line.Name)
		assert.Equal(t, "", line.Code)
		assert.Equal(t, "", line.Unit)
		assert.True(t, line.Subtotal.Equal(dec("3")))
	})

	t.Run("should fill empty fields from later occurrences", func(t *testing.T) {
		posts := []budget.Post{
			postWithGroup(groupLine(9, "1", "2", display("CB", "", ""))),
			postWithLoose(loose(9, "1", "5", display("OTHER", "Cabo", "M"))),
		}

		result := Consolidate(posts)

		require.Len(t, result.Lines, 1)
		line := result.Lines[0]
		assert.Equal(t, "CB", line.Code)
		assert.Equal(t, "Cabo", line.Name)
		assert.Equal(t, "M", line.Unit)
		assert.True(t, line.UnitPrice.Equal(dec("2")))
	})
}

func TestNewEngine_Locale(t *testing.T) {
	engine := NewEngine(language.AmericanEnglish)
	posts := []budget.Post{postWithLoose(
		loose(1, "1", "1", display("", "zinc", "")),
		loose(2, "1", "1", display("", "Ébano", "")),
		loose(3, "1", "1", display("", "apple", "")),
	)}

	result := engine.Consolidate(posts)

	require.Len(t, result.Lines, 3)
	assert.Equal(t, "apple", result.Lines[0].Name)
	assert.Equal(t, "Ébano", result.Lines[1].Name)
	assert.Equal(t, "zinc", result.Lines[2].Name)
}
