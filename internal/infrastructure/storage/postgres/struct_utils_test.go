package postgres

import (
	"contratia/internal/core/entity"
	"testing"

	"github.com/stretchr/testify/assert"
)

type MockDocument struct {
	entity.Document
	ClientName string `db:"client_name" json:"clientName"`
	Internal   string `db:"-" json:"-"`
}

func TestExtractDBColumns_EmbeddedDocument(t *testing.T) {
	cols := ExtractDBColumns[MockDocument]()

	expectedCols := []string{
		"id", "version", "attributes", "created_at", "updated_at",
		"created_by", "updated_by",
		"number", "state", "owner_id", "review_comment", "client_name",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
}

func TestStructToMap_EmbeddedDocument(t *testing.T) {
	doc := MockDocument{
		Document:   entity.NewDocument("emp-1", "draft"),
		ClientName: "Hospital San Rafael",
		Internal:   "not persisted",
	}
	doc.Number = "CT-2026-00001"

	m := StructToMap(doc)

	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, "CT-2026-00001", m["number"])
	assert.Equal(t, "draft", m["state"])
	assert.Equal(t, "emp-1", m["owner_id"])
	assert.Equal(t, "Hospital San Rafael", m["client_name"])
	assert.Equal(t, 1, m["version"])

	_, hasIgnored := m["Internal"]
	assert.False(t, hasIgnored)
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("str"))
}
