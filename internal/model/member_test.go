package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDListAddRemove(t *testing.T) {
	ids := IDList{}
	ids = ids.Add(1).Add(2).Add(1)
	assert.Equal(t, IDList{1, 2}, ids)

	ids = ids.Remove(1)
	assert.Equal(t, IDList{2}, ids)

	// 移除不存在的ID不变
	ids = ids.Remove(99)
	assert.Equal(t, IDList{2}, ids)
}

func TestSiblingLinksScanTypedFormat(t *testing.T) {
	var links SiblingLinks
	err := links.Scan(`[{"id":3,"type":"half"},{"id":4,"type":"step"}]`)
	require.NoError(t, err)

	assert.Equal(t, SiblingLinks{
		{ID: 3, Type: SiblingTypeHalf},
		{ID: 4, Type: SiblingTypeStep},
	}, links)
}

func TestSiblingLinksScanLegacyBareIDs(t *testing.T) {
	// 旧格式：纯ID数组，归一化为类型未知的链接，ID不丢失
	var links SiblingLinks
	err := links.Scan(`[3,4]`)
	require.NoError(t, err)

	assert.Equal(t, SiblingLinks{
		{ID: 3, Type: SiblingTypeNone},
		{ID: 4, Type: SiblingTypeNone},
	}, links)
}

func TestSiblingLinksScanMixedFormats(t *testing.T) {
	var links SiblingLinks
	err := links.Scan([]byte(`[{"id":3,"type":"full"},7]`))
	require.NoError(t, err)

	assert.Equal(t, SiblingLinks{
		{ID: 3, Type: SiblingTypeFull},
		{ID: 7, Type: SiblingTypeNone},
	}, links)
}

func TestSiblingLinksValuePersistsTypedForm(t *testing.T) {
	links := SiblingLinks{{ID: 3, Type: SiblingTypeFull}}
	value, err := links.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":3,"type":"full"}]`, value.(string))

	// nil集合落盘为空数组而不是null
	var empty SiblingLinks
	value, err = empty.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, value.(string))
}

func TestSiblingLinksScanEmpty(t *testing.T) {
	var links SiblingLinks
	require.NoError(t, links.Scan(nil))
	assert.Empty(t, links)
}

func TestMemberRelativeIDs(t *testing.T) {
	member := &Member{
		Parents:  IDList{1, 2},
		Spouses:  IDList{3},
		Children: IDList{4, 5},
		Siblings: SiblingLinks{{ID: 6, Type: SiblingTypeFull}, {ID: 4, Type: SiblingTypeHalf}},
	}

	// 重复引用去重
	assert.Equal(t, IDList{1, 2, 3, 4, 5, 6}, member.RelativeIDs())
}

func TestRelationKindReciprocal(t *testing.T) {
	assert.Equal(t, RelationChild, RelationParent.Reciprocal())
	assert.Equal(t, RelationParent, RelationChild.Reciprocal())
	assert.Equal(t, RelationSpouse, RelationSpouse.Reciprocal())
	assert.Equal(t, RelationSibling, RelationSibling.Reciprocal())
}
