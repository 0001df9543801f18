package mocks

//go:generate mockgen -destination=agent_repository.go -package=mocks -mock_names=Repository=MockAgentRepository github.com/alanyang/agentpages/internal/port/agent Repository
//go:generate mockgen -destination=eventbus.go -package=mocks -mock_names=EventBus=MockEventBus github.com/alanyang/agentpages/internal/port/eventbus EventBus
//go:generate mockgen -destination=cache.go -package=mocks -mock_names=Cache=MockCache github.com/alanyang/agentpages/internal/port/cache Cache
//go:generate mockgen -destination=locker.go -package=mocks -mock_names=AdvisoryLocker=MockAdvisoryLocker github.com/alanyang/agentpages/internal/port/locker AdvisoryLocker
//go:generate mockgen -destination=cardfetch.go -package=mocks -mock_names=Fetcher=MockCardFetcher github.com/alanyang/agentpages/internal/port/cardfetch Fetcher
//go:generate mockgen -destination=idempotency.go -package=mocks -mock_names=Store=MockIdempotencyStore github.com/alanyang/agentpages/internal/port/idempotency Store
