package domain

// User represents the user entity
type User struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Age  float64 `json:"age"`
}

// UserSchema holds the field rules of the user resource
var UserSchema = Schema{
	Resource: "user",
	Rules: []FieldRule{
		{Name: "name", Kind: KindString, Tag: "required", Message: "name must be a non-empty string"},
		{Name: "age", Kind: KindNumber, Tag: "gte=0,lte=150", Message: "age must be a number between 0 and 150"},
	},
}

func (u *User) GetID() string   { return u.ID }
func (u *User) SetID(id string) { u.ID = id }

// Apply copies the present fields onto the user.
func (u *User) Apply(f Fields) {
	if v, ok := f.String("name"); ok {
		u.Name = v
	}
	if v, ok := f.Number("age"); ok {
		u.Age = v
	}
}

// UserSeed is the demo user list loaded when seeding is enabled.
var UserSeed = []Payload{
	{"name": "Peter", "age": 16},
	{"name": "Ivan", "age": 18},
	{"name": "Daria", "age": 20},
}
