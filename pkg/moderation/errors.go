package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/permissions"
	"github.com/PancyStudios/PancyModBot/pkg/settings"
	"github.com/PancyStudios/PancyModBot/pkg/storage"
)

var (
	ErrInvalidDuration      = errors.New("invalid duration")
	ErrNoWarnings           = errors.New("member has no warnings")
	ErrNotMuted             = errors.New("member is not muted")
	ErrNotBanned            = errors.New("user is not banned")
	ErrInvalidUserID        = errors.New("invalid user id")
	ErrEmptyMessage         = errors.New("empty message")
	ErrPlatformActionFailed = errors.New("platform action failed")
	ErrTargetNotFound       = errors.New("target not found")
)

// platformFailure wraps a platform error. Unknown targets keep their own kind.
func platformFailure(action string, err error) error {
	if errors.Is(err, ErrTargetNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrPlatformActionFailed, action, err)
}

// UserMessage turns any error returned by the service into the text shown to
// the moderator.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, permissions.ErrNotAuthorized):
		return "❌ No tienes permisos para usar este comando."
	case errors.Is(err, ErrInvalidDuration):
		return "❌ Duración inválida. Ejemplos: 600, 10m, 2h, 1d (o 'p' para un baneo permanente)."
	case errors.Is(err, ErrNoWarnings):
		return "❌ El usuario no tiene advertencias."
	case errors.Is(err, ErrNotMuted):
		return "❌ El usuario no está silenciado."
	case errors.Is(err, ErrNotBanned):
		return "❌ No se pudo desbanear al usuario. Es posible que no esté baneado."
	case errors.Is(err, ErrInvalidUserID):
		return "❌ ID de usuario inválido."
	case errors.Is(err, ErrEmptyMessage):
		return "❌ El mensaje no puede estar vacío."
	case errors.Is(err, ErrTargetNotFound):
		return "❌ No se encontró al usuario en el servidor."
	case errors.Is(err, settings.ErrInvalidSettings):
		return "❌ Valores inválidos: los umbrales deben ser 0 o mayores y la duración mayor que 0."
	case errors.Is(err, context.DeadlineExceeded):
		return "❌ Discord tardó demasiado en responder. Inténtalo de nuevo."
	case errors.Is(err, ErrPlatformActionFailed):
		return "❌ No se pudo completar la acción. ¿El bot tiene permisos suficientes?"
	case errors.Is(err, storage.ErrStorage):
		return "❌ Error interno al guardar los datos. Inténtalo de nuevo."
	default:
		return "❌ Ocurrió un error inesperado."
	}
}
