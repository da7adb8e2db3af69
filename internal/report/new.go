package report

import "github.com/avolkov/voxscribe/internal/logger"

type implRenderer struct {
	logger logger.Logger
}

func New(log logger.Logger) Renderer {
	return &implRenderer{logger: log}
}
