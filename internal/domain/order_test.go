package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Translate(t *testing.T) {
	assert.Equal(t, "Criado", OrderStatusCreated.Translate())
	assert.Equal(t, "Em preparação", OrderStatusInPreparation.Translate())
	assert.Equal(t, "Aguardando retirada", OrderStatusWaitingForRetreat.Translate())
	assert.Equal(t, "Finalizado", OrderStatusFinished.Translate())
}

func TestOrderStatus_TranslateUnknownFallsBack(t *testing.T) {
	assert.Equal(t, "shipped", OrderStatus("shipped").Translate())
}
