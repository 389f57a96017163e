package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"familygraph_go/internal/model"
)

func TestAffectedIDsCoversOneHopRelatives(t *testing.T) {
	m1 := &model.Member{
		Model:    gorm.Model{ID: 1},
		Parents:  model.IDList{4},
		Children: model.IDList{5, 6},
	}
	m2 := &model.Member{
		Model:    gorm.Model{ID: 2},
		Spouses:  model.IDList{7},
		Siblings: model.SiblingLinks{{ID: 8, Type: model.SiblingTypeFull}},
	}

	got := affectedIDs([]uint{1, 2}, []*model.Member{m1, m2})
	assert.ElementsMatch(t, []uint{1, 2, 4, 5, 6, 7, 8}, got)
}

func TestAffectedIDsKeepsEndpointsWhenLookupEmpty(t *testing.T) {
	got := affectedIDs([]uint{3, 9}, nil)
	assert.ElementsMatch(t, []uint{3, 9}, got)
}
