package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"familygraph_go/internal/model"
)

func testLogger() *Logger {
	return NewLogger(&LoggerConfig{Level: LogLevelError})
}

func member(id uint, parents ...uint) *model.Member {
	return &model.Member{
		Model:   gorm.Model{ID: id},
		Parents: model.IDList(parents),
	}
}

func TestClassifyDerivation(t *testing.T) {
	c := NewSiblingClassifier(testLogger())

	tests := []struct {
		name string
		a, b *model.Member
		want model.SiblingType
	}{
		{"shared both parents", member(1, 10, 11), member(2, 10, 11), model.SiblingTypeFull},
		{"shared one parent", member(1, 10, 11), member(2, 10, 12), model.SiblingTypeHalf},
		{"no shared parents", member(1, 10, 11), member(2, 12, 13), model.SiblingTypeNone},
		{"empty parents never guesses", member(1), member(2, 10), model.SiblingTypeNone},
		{"both empty", member(1), member(2), model.SiblingTypeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifySymmetry(t *testing.T) {
	c := NewSiblingClassifier(testLogger())

	pairs := [][2]*model.Member{
		{member(1, 10, 11), member(2, 10, 11)},
		{member(1, 10, 11), member(2, 10, 12)},
		{member(1), member(2, 10)},
		{member(1, 10), member(2, 11)},
	}

	for _, pair := range pairs {
		ab, _ := c.Classify(pair[0], pair[1])
		ba, _ := c.Classify(pair[1], pair[0])
		assert.Equal(t, ab, ba)
	}
}

func TestClassifyExplicitWinsOverDerived(t *testing.T) {
	c := NewSiblingClassifier(testLogger())

	// 共同父母会推出Full，但显式链接声明为Step
	a := member(1, 10, 11)
	b := member(2, 10, 11)
	a.Siblings = model.SiblingLinks{{ID: 2, Type: model.SiblingTypeStep}}
	b.Siblings = model.SiblingLinks{{ID: 1, Type: model.SiblingTypeStep}}

	got, err := c.Classify(a, b)
	require.NoError(t, err)
	assert.Equal(t, model.SiblingTypeStep, got)

	got, err = c.Classify(b, a)
	require.NoError(t, err)
	assert.Equal(t, model.SiblingTypeStep, got)
}

func TestClassifyOneSidedLinkSurfacesIntegrityViolation(t *testing.T) {
	c := NewSiblingClassifier(testLogger())

	a := member(1)
	b := member(2)
	a.Siblings = model.SiblingLinks{{ID: 2, Type: model.SiblingTypeAdopted}}

	got, err := c.Classify(a, b)
	assert.Equal(t, model.SiblingTypeAdopted, got)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrIntegrityViolation))

	// 参数顺序不影响结果，错误照样上报
	got, err = c.Classify(b, a)
	assert.Equal(t, model.SiblingTypeAdopted, got)
	assert.True(t, IsCode(err, ErrIntegrityViolation))
}

func TestClassifyMismatchedTypesSurfaceIntegrityViolation(t *testing.T) {
	c := NewSiblingClassifier(testLogger())

	a := member(1)
	b := member(2)
	a.Siblings = model.SiblingLinks{{ID: 2, Type: model.SiblingTypeStep}}
	b.Siblings = model.SiblingLinks{{ID: 1, Type: model.SiblingTypeAdopted}}

	// ID较小一方的链接胜出，两个方向结果一致
	got, err := c.Classify(a, b)
	assert.Equal(t, model.SiblingTypeStep, got)
	assert.True(t, IsCode(err, ErrIntegrityViolation))

	got, err = c.Classify(b, a)
	assert.Equal(t, model.SiblingTypeStep, got)
	assert.True(t, IsCode(err, ErrIntegrityViolation))
}

func TestClassifyLegacyUnknownTypeInfersFromParents(t *testing.T) {
	c := NewSiblingClassifier(testLogger())

	// 旧格式链接：类型未知，按共同父母推断
	a := member(1, 10, 12)
	b := member(2, 10, 11)
	a.Siblings = model.SiblingLinks{{ID: 2, Type: model.SiblingTypeNone}}
	b.Siblings = model.SiblingLinks{{ID: 1, Type: model.SiblingTypeNone}}

	got, err := c.Classify(a, b)
	require.NoError(t, err)
	assert.Equal(t, model.SiblingTypeHalf, got)

	// 推断不出时按Full处理（用户当初录入过这层关系）
	x := member(3)
	y := member(4)
	x.Siblings = model.SiblingLinks{{ID: 4, Type: model.SiblingTypeNone}}
	y.Siblings = model.SiblingLinks{{ID: 3, Type: model.SiblingTypeNone}}

	got, err = c.Classify(x, y)
	require.NoError(t, err)
	assert.Equal(t, model.SiblingTypeFull, got)
}

func TestGroupTransitiveClosure(t *testing.T) {
	c := NewSiblingClassifier(testLogger())

	// 1和2同父同母，2和3同父异母，1和3没有共同父母，
	// 传递闭包仍把三人归入同一簇
	m1 := member(1, 10, 11)
	m2 := member(2, 10, 11)
	m3 := member(3, 12, 13)
	m2.Siblings = model.SiblingLinks{{ID: 3, Type: model.SiblingTypeHalf}}
	m3.Siblings = model.SiblingLinks{{ID: 2, Type: model.SiblingTypeHalf}}

	groups := c.Group([]*model.Member{m1, m2, m3})
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 3)
}

func TestGroupDropsSingletons(t *testing.T) {
	c := NewSiblingClassifier(testLogger())

	m1 := member(1, 10, 11)
	m2 := member(2, 10, 11)
	m3 := member(3, 12, 13)

	groups := c.Group([]*model.Member{m1, m2, m3})
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []*model.Member{m1, m2}, groups[0])
}

func TestGroupStepLinksDoNotMergeClusters(t *testing.T) {
	c := NewSiblingClassifier(testLogger())

	// 继兄弟姐妹链接不并簇：只有Full/Half连边
	m1 := member(1, 10, 11)
	m2 := member(2, 10, 11)
	m3 := member(3, 12, 13)
	m4 := member(4, 12, 13)
	m2.Siblings = model.SiblingLinks{{ID: 3, Type: model.SiblingTypeStep}}
	m3.Siblings = model.SiblingLinks{{ID: 2, Type: model.SiblingTypeStep}}

	groups := c.Group([]*model.Member{m1, m2, m3, m4})
	require.Len(t, groups, 2)
	assert.ElementsMatch(t, []*model.Member{m1, m2}, groups[0])
	assert.ElementsMatch(t, []*model.Member{m3, m4}, groups[1])
}

func TestGroupEmptyInput(t *testing.T) {
	c := NewSiblingClassifier(testLogger())
	assert.Empty(t, c.Group(nil))
	assert.Empty(t, c.Group([]*model.Member{}))
}
