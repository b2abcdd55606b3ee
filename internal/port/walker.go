package port

import "codesnap/internal/domain"

type FileWalker interface {
	Walk(root string) (*domain.WalkResult, error)
}

type FileReader interface {
	ReadFile(path string) (string, error)
}
