/*
Package pipeline loads step sets from YAML files.

A pipeline file declares its struct types, optional default inputs and the
steps. Types are built at runtime and registered in a registry.Types, so
steps can refer to them by name:

	name: onboarding
	types:
	  User:
	    Name: string
	    Age: int
	inputs:
	  name: amir
	steps:
	  - name: Register
	    params:
	      - {name: name, type: string, bound: name}
	    returns: User
	    declares:
	      - {field: Name, equal: amir}
	    emit: {Name: $name, Age: 30}

A step with an emit section gets a generated body: the emit value is
expanded ("$param" or "$param.Field" read an argument) and decoded into the
result type. Steps without one need a body registered in a registry.Registry.
*/
package pipeline
