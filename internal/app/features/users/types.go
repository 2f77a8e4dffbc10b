// internal/app/features/users/types.go
package usersfeature

// userInput is the POST and PUT /api/users body. Password is required on
// create; on update a blank password keeps the current one.
type userInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}
