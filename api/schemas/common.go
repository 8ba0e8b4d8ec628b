package schemas

// -- Common Schemas --

// Credential holds a username and password pair.
type Credential struct {
	Username string `json:"username" mapstructure:"username" yaml:"username"`
	Password string `json:"password" mapstructure:"password" yaml:"password"`
}

// Employee is the subset of a PIM record the suite creates and edits.
type Employee struct {
	FirstName string `json:"first_name" mapstructure:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" mapstructure:"last_name" yaml:"last_name"`
}

// FullName joins the first and last name with a single space.
func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
