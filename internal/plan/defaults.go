package plan

// DefaultPrimary is the compiled-in primary plan used when no plan file exists.
func DefaultPrimary(capacity int) Plan {
	return New(capacity,
		Drive(60, 1200),
		Turn(90),
		Drive(-40, 500),
		Pause(250),
	)
}

// DefaultSecondary is the compiled-in secondary plan used when no plan file exists.
func DefaultSecondary(capacity int) Plan {
	return New(capacity,
		Drive(50, 1000),
		Turn(45),
		Drive(50, 500),
	)
}
