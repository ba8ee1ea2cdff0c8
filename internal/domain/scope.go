package domain

// Scope es el contexto explícito de cada llamada: negocio y usuario que actúa.
// Reemplaza al contexto global de sesión; lo construye la capa de interfaces.
type Scope struct {
	BusinessID string
	ActorID    string
}

// Validate exige ambos identificadores.
func (s Scope) Validate() error {
	if s.BusinessID == "" {
		return Invalid("business_id", "es requerido")
	}
	if s.ActorID == "" {
		return Invalid("actor_id", "es requerido")
	}
	return nil
}

// Owns indica si un recurso del negocio businessID está dentro del alcance.
func (s Scope) Owns(businessID string) bool {
	return businessID != "" && businessID == s.BusinessID
}
