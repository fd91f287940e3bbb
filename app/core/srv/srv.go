package srv

type Srv struct {
	ai *AI
}

type ApplyFunc func(s *Srv)

func SetupSrvs(opts ...ApplyFunc) *Srv {
	a := &Srv{}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (s *Srv) AI() *AI {
	return s.ai
}

// GetAIStatus 获取AI系统状态
func (s *Srv) GetAIStatus() map[string]interface{} {
	if s.ai == nil {
		return map[string]interface{}{
			"status": "not_initialized",
		}
	}

	return map[string]interface{}{
		"status":          "running",
		"chat_model":      s.ai.model.ChatModel,
		"embedding_model": s.ai.model.EmbeddingModel,
	}
}
