package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Risk() RiskRepository
	Treatment() TreatmentRepository

	// Close releases the underlying storage client
	Close() error
}
