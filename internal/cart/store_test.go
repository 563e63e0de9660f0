package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MouraVocal/vendas-pascoa/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSaver struct {
	m       sync.Mutex
	lines   []domain.CartLine
	loadErr error
	saveErr error
	saves   int
}

func (m *mockSaver) Load(context.Context) ([]domain.CartLine, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.lines, nil
}

func (m *mockSaver) Save(_ context.Context, lines []domain.CartLine) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.lines = append([]domain.CartLine(nil), lines...)
	m.saves++
	return nil
}

func (m *mockSaver) saved() []domain.CartLine {
	m.m.Lock()
	defer m.m.Unlock()
	return m.lines
}

func testProduct(id, name string, price float64) domain.Product {
	return domain.Product{
		ID:    id,
		Name:  name,
		Price: decimal.NewFromFloat(price),
	}
}

func TestAddItem_NewLine(t *testing.T) {
	saver := &mockSaver{loadErr: ErrNoSavedCart}
	sut := NewStore(context.Background(), saver)

	err := sut.AddItem(context.Background(), testProduct("p1", "Ovo de colher", 59.90))
	require.NoError(t, err)

	lines := sut.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].Product.ID)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestAddItem_TwiceMergesIntoOneLine(t *testing.T) {
	saver := &mockSaver{loadErr: ErrNoSavedCart}
	sut := NewStore(context.Background(), saver)
	p := testProduct("p1", "Ovo de colher", 59.90)

	require.NoError(t, sut.AddItem(context.Background(), p))
	require.NoError(t, sut.AddItem(context.Background(), p))

	lines := sut.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 2, sut.ItemCount())
}

func TestRemoveItem_AbsentProductIsNoOp(t *testing.T) {
	saver := &mockSaver{loadErr: ErrNoSavedCart}
	sut := NewStore(context.Background(), saver)
	require.NoError(t, sut.AddItem(context.Background(), testProduct("p1", "Ovo", 10)))

	err := sut.RemoveItem(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Len(t, sut.Lines(), 1)
}

func TestUpdateQuantity_SetsExactValue(t *testing.T) {
	saver := &mockSaver{loadErr: ErrNoSavedCart}
	sut := NewStore(context.Background(), saver)
	require.NoError(t, sut.AddItem(context.Background(), testProduct("p1", "Ovo", 10)))

	require.NoError(t, sut.UpdateQuantity(context.Background(), "p1", 7))

	lines := sut.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].Quantity)
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	saver := &mockSaver{loadErr: ErrNoSavedCart}
	sut := NewStore(context.Background(), saver)
	require.NoError(t, sut.AddItem(context.Background(), testProduct("p1", "Ovo", 10)))

	require.NoError(t, sut.UpdateQuantity(context.Background(), "p1", 0))

	assert.Empty(t, sut.Lines())
	assert.Equal(t, 0, sut.ItemCount())
}

func TestTotalAndItemCount(t *testing.T) {
	saver := &mockSaver{loadErr: ErrNoSavedCart}
	sut := NewStore(context.Background(), saver)
	a := testProduct("a", "A", 10.00)
	b := testProduct("b", "B", 25.90)

	require.NoError(t, sut.AddItem(context.Background(), a))
	require.NoError(t, sut.AddItem(context.Background(), a))
	require.NoError(t, sut.AddItem(context.Background(), b))

	assert.True(t, sut.Total().Equal(decimal.NewFromFloat(45.90)),
		"expected 45.90, got %s", sut.Total())
	assert.Equal(t, 3, sut.ItemCount())
}

func TestTotal_RecomputedAfterPriceRefresh(t *testing.T) {
	saver := &mockSaver{loadErr: ErrNoSavedCart}
	sut := NewStore(context.Background(), saver)
	require.NoError(t, sut.AddItem(context.Background(), testProduct("p1", "Ovo", 10)))
	require.NoError(t, sut.UpdateQuantity(context.Background(), "p1", 2))

	refreshed := testProduct("p1", "Ovo", 12.50)
	require.NoError(t, sut.RefreshProduct(context.Background(), refreshed))

	assert.True(t, sut.Total().Equal(decimal.NewFromFloat(25.00)),
		"expected 25.00, got %s", sut.Total())
}

func TestRefreshProduct_PreservesQuantity(t *testing.T) {
	saver := &mockSaver{loadErr: ErrNoSavedCart}
	sut := NewStore(context.Background(), saver)
	require.NoError(t, sut.AddItem(context.Background(), testProduct("p1", "Ovo", 10)))
	require.NoError(t, sut.UpdateQuantity(context.Background(), "p1", 5))

	require.NoError(t, sut.RefreshProduct(context.Background(), testProduct("p1", "Ovo novo", 15)))

	lines := sut.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Ovo novo", lines[0].Product.Name)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestRefreshProduct_NoLineIsNoOp(t *testing.T) {
	saver := &mockSaver{loadErr: ErrNoSavedCart}
	sut := NewStore(context.Background(), saver)

	require.NoError(t, sut.RefreshProduct(context.Background(), testProduct("ghost", "X", 1)))
	assert.Empty(t, sut.Lines())
}

func TestNewStore_RestoresSavedLines(t *testing.T) {
	saved := []domain.CartLine{
		{Product: testProduct("p1", "Ovo", 59.90), Quantity: 2},
		{Product: testProduct("p2", "Barra", 34.50), Quantity: 1},
	}
	saver := &mockSaver{lines: saved}

	sut := NewStore(context.Background(), saver)

	assert.Equal(t, saved, sut.Lines())
	assert.Equal(t, 3, sut.ItemCount())
}

func TestNewStore_RoundTrip(t *testing.T) {
	saver := &mockSaver{loadErr: ErrNoSavedCart}
	first := NewStore(context.Background(), saver)
	require.NoError(t, first.AddItem(context.Background(), testProduct("p1", "Ovo", 59.90)))
	require.NoError(t, first.AddItem(context.Background(), testProduct("p1", "Ovo", 59.90)))
	require.NoError(t, first.AddItem(context.Background(), testProduct("p2", "Barra", 34.50)))

	saver.m.Lock()
	saver.loadErr = nil
	saver.m.Unlock()
	second := NewStore(context.Background(), saver)

	assert.Equal(t, first.Lines(), second.Lines())
}

func TestNewStore_CorruptStateStartsEmpty(t *testing.T) {
	saver := &mockSaver{loadErr: errors.New("unmarshal cart failed: unexpected end of JSON input")}

	sut := NewStore(context.Background(), saver)

	assert.Empty(t, sut.Lines())
	assert.Equal(t, 0, sut.ItemCount())
}

func TestMutations_PersistEveryTime(t *testing.T) {
	saver := &mockSaver{loadErr: ErrNoSavedCart}
	sut := NewStore(context.Background(), saver)
	p := testProduct("p1", "Ovo", 10)

	require.NoError(t, sut.AddItem(context.Background(), p))
	require.NoError(t, sut.UpdateQuantity(context.Background(), "p1", 3))
	require.NoError(t, sut.RemoveItem(context.Background(), "p1"))

	saver.m.Lock()
	defer saver.m.Unlock()
	assert.Equal(t, 3, saver.saves)
	assert.Empty(t, saver.lines)
}

func TestSaveFailure_SurfacesError(t *testing.T) {
	saveErr := errors.New("redis set failed")
	saver := &mockSaver{loadErr: ErrNoSavedCart, saveErr: saveErr}
	sut := NewStore(context.Background(), saver)

	err := sut.AddItem(context.Background(), testProduct("p1", "Ovo", 10))
	assert.ErrorIs(t, err, saveErr)
}
