package service

import "strings"

// ValidationError carrega todas as mensagens de validação de uma operação.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}
