package errors

// ValidateSections checks a requested section count.
func ValidateSections(n int) error {
	if n <= 0 {
		return New(ErrCodeInvalidArgument, "maxSections must be positive, got %d", n)
	}
	return nil
}

// ValidateHeight checks a height bound. Zero means "no bound".
func ValidateHeight(h float64) error {
	if h < 0 {
		return New(ErrCodeInvalidArgument, "maxSectionHeight cannot be negative, got %g", h)
	}
	return nil
}
