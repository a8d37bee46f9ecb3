package repo

import "errors"

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrConflict indica violação de unicidade (ex.: e-mail já cadastrado).
	ErrConflict = errors.New("registro já existe")
)
