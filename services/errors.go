package services

import "fmt"

// Fehler-Taxonomie des Service-Layers. Die Handler in main.go bilden die Typen
// auf HTTP-Statuscodes ab (404, 500, 400, 401); Lookup-Misses werden hier an
// der Service-Grenze in NotFoundError übersetzt und verlassen den Layer nie
// als nacktes gorm.ErrRecordNotFound.

// NotFoundError signalisiert, dass die angefragte Entität nicht existiert.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// ServiceError kapselt einen Storage- oder I/O-Fehler samt Ursache.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ValidationError signalisiert fehlerhafte oder fehlende Eingaben an der API-Grenze.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// UnauthorizedError signalisiert abgelehnte Anmeldedaten.
type UnauthorizedError struct{}

func (e *UnauthorizedError) Error() string {
	return "invalid credentials"
}
