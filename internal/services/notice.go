package services

import "time"

// NoticeDuration is how long a transient notification stays visible.
const NoticeDuration = 3 * time.Second

// Level is the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a one-shot message for the user.
type Notice struct {
	Level    Level
	Text     string
	Duration time.Duration
}

func notice(level Level, text string) Notice {
	return Notice{Level: level, Text: text, Duration: NoticeDuration}
}

// Empty reports whether there is nothing to show.
func (n Notice) Empty() bool { return n.Text == "" }

// User-facing messages.
const (
	MsgNoPermissions     = "No se encontraron permisos para este usuario"
	MsgNoClinics         = "No tienes lugares de atención asignados."
	MsgNoValidClinics    = "No se encontraron lugares de atención válidos asignados."
	MsgPermissionsFailed = "Error al cargar tus permisos. Revisa tu conexión o la base de datos."
	MsgLoadFailed        = "Error al cargar registros del EBAIS."
	MsgSelectClinic      = "Por favor, selecciona un lugar de atención primero."
	MsgNotAuthorized     = "No tienes acceso a este lugar de atención."
	MsgDuplicate         = "⚠️ Esta receta ya existe. No se puede guardar duplicada."
	MsgCreated           = "✅ Registro añadido exitosamente."
	MsgUpdated           = "✅ Registro actualizado exitosamente."
	MsgDeleted           = "✅ Registro eliminado exitosamente."
	MsgSaveFailed        = "Error guardando el registro. Intenta de nuevo."
	MsgDeleteFailed      = "Error eliminando el registro. Intenta de nuevo."
	MsgNotFound          = "El registro no existe."
)
