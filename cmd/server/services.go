package main

import (
	"codeberg.org/parley/server/internal/anonquota"
	"codeberg.org/parley/server/internal/config"
	"codeberg.org/parley/server/internal/credits"
	"codeberg.org/parley/server/internal/orchestrator"
	"codeberg.org/parley/server/internal/provider"
	"codeberg.org/parley/server/internal/titles"
	"codeberg.org/parley/server/internal/tools"
	"codeberg.org/parley/server/parley/chats"
	"codeberg.org/parley/server/parley/conversations"
	"codeberg.org/parley/server/parley/users"
)

// tools offered to every turn, with their credit surcharges
var toolCatalog = []tools.Tool{
	{Name: "web_search", Cost: 3},
	{Name: "file_search", Cost: 2},
	{Name: "code_interpreter", Cost: 5},
}

// creates the provider client and the turn pipeline built on the
// repositories and accounting services
func InitializeServices(
	cfg *config.Config,
	userRepo *users.Repository,
	chatRepo *chats.Repository,
	ledger *credits.Ledger,
	quota *anonquota.Limiter,
	convos *conversations.Manager,
) *Services {
	providerClient := provider.NewOpenAIClient(provider.OpenAIConfig{
		APIKey: cfg.OpenAIKey,
	})

	titleService := titles.NewService(providerClient, chatRepo)

	orch := orchestrator.New(
		userRepo,
		chatRepo,
		ledger,
		quota,
		convos,
		providerClient,
		toolCatalog,
		orchestrator.DefaultConfig(),
	)
	orch.SetTitler(titleService)

	return &Services{
		Provider:     providerClient,
		Orchestrator: orch,
		Titles:       titleService,
	}
}
