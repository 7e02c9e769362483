package fleet

import "fmt"

// UnitNotFoundError reports an operation against an unknown unit id.
type UnitNotFoundError struct {
	ID string
}

func (e UnitNotFoundError) Error() string {
	return fmt.Sprintf("unit %s not found", e.ID)
}

// UnitBusyError reports a reservation attempt against a unit that is already
// busy. During dispatch it signals a lost reservation race and triggers a
// re-selection rather than surfacing to the caller.
type UnitBusyError struct {
	ID string
}

func (e UnitBusyError) Error() string {
	return fmt.Sprintf("unit %s is already busy", e.ID)
}
