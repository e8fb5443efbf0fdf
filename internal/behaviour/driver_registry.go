package behaviour

import "sort"

type DriverConstructor func(env Env) Driver

var driverRegistry = map[string]DriverConstructor{}

// RegisterDriver makes a driver available to every engine created afterwards.
// Registering an existing name replaces its constructor.
func RegisterDriver(name string, constructor DriverConstructor) {
	driverRegistry[name] = constructor
}

// AvailableDrivers lists the registered driver names in sorted order.
func AvailableDrivers() []string {
	names := make([]string, 0, len(driverRegistry))
	for name := range driverRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func CreateDriver(name string, env Env) Driver {
	if constructor, exists := driverRegistry[name]; exists {
		return constructor(env)
	}
	return nil
}
