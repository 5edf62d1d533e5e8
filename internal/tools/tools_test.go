package tools

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffordable_FiltersByBudget(t *testing.T) {
	candidates := []Tool{
		{Name: "web_search", Cost: 2},
		{Name: "code_interpreter", Cost: 5},
		{Name: "file_search", Cost: 3},
	}

	result := Affordable(candidates, 3)

	require.Len(t, result, 2)
	assert.Equal(t, "web_search", result[0].Name)
	assert.Equal(t, "file_search", result[1].Name)
}

func TestAffordable_ExactBoundary(t *testing.T) {
	candidates := []Tool{
		{Name: "web_search", Cost: 3},
	}

	// cost equal to budget is affordable
	assert.Len(t, Affordable(candidates, 3), 1)
	assert.Empty(t, Affordable(candidates, 2))
}

func TestAffordable_ZeroBudget(t *testing.T) {
	candidates := []Tool{
		{Name: "web_search", Cost: 1},
		{Name: "free_tool", Cost: 0},
	}

	result := Affordable(candidates, 0)

	require.Len(t, result, 1)
	assert.Equal(t, "free_tool", result[0].Name)
}

func TestResolve_NoExplicitRequest(t *testing.T) {
	candidates := []Tool{
		{Name: "web_search", Cost: 2},
		{Name: "code_interpreter", Cost: 10},
	}

	result, err := Resolve(candidates, "", 5)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "web_search", result[0].Name)
}

func TestResolve_ExplicitRequestAffordable(t *testing.T) {
	candidates := []Tool{
		{Name: "web_search", Cost: 2},
		{Name: "file_search", Cost: 3},
	}

	result, err := Resolve(candidates, "file_search", 5)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "file_search", result[0].Name)
}

func TestResolve_ExplicitRequestOverBudget(t *testing.T) {
	candidates := []Tool{
		{Name: "web_search", Cost: 2},
		{Name: "code_interpreter", Cost: 10},
	}

	_, err := Resolve(candidates, "code_interpreter", 5)

	require.Error(t, err)

	var budgetErr *BudgetExceededError
	require.True(t, errors.As(err, &budgetErr), "expected BudgetExceededError")
	assert.Equal(t, "code_interpreter", budgetErr.Tool)
	assert.Equal(t, 10, budgetErr.Cost)
	assert.Equal(t, 5, budgetErr.Budget)
}

func TestResolve_UnknownTool(t *testing.T) {
	candidates := []Tool{
		{Name: "web_search", Cost: 2},
	}

	_, err := Resolve(candidates, "nonexistent", 5)

	require.Error(t, err)

	var budgetErr *BudgetExceededError
	assert.False(t, errors.As(err, &budgetErr), "unknown tool is not a budget error")
}
