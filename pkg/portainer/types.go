package portainer

// Pair is one environment variable in Portainer's list representation.
type Pair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Stack is a deployed stack as returned by the stacks endpoints.
type Stack struct {
	ID              int              `json:"Id"`
	Name            string           `json:"Name"`
	Type            int              `json:"Type"`
	EndpointID      int              `json:"EndpointId"`
	SwarmID         string           `json:"SwarmId,omitempty"`
	EntryPoint      string           `json:"EntryPoint,omitempty"`
	Env             []Pair           `json:"Env"`
	ResourceControl *ResourceControl `json:"ResourceControl,omitempty"`
}

// HasResourceControl reports whether an access control object exists for
// the stack.
func (s *Stack) HasResourceControl() bool {
	return s != nil && s.ResourceControl.Exists()
}

// StackFile is the response of stacks/{id}/file.
type StackFile struct {
	StackFileContent string `json:"StackFileContent"`
}

// ResourceControl is Portainer's access control object.
type ResourceControl struct {
	ID                 int          `json:"Id"`
	ResourceID         string       `json:"ResourceId,omitempty"`
	Public             bool         `json:"Public"`
	AdministratorsOnly bool         `json:"AdministratorsOnly,omitempty"`
	UserAccesses       []UserAccess `json:"UserAccesses"`
	TeamAccesses       []TeamAccess `json:"TeamAccesses"`
}

// Exists reports whether the control has been created server side. An id
// of zero means it does not exist yet.
func (rc *ResourceControl) Exists() bool {
	return rc != nil && rc.ID != 0
}

// UserIDs returns the ids of users granted access.
func (rc *ResourceControl) UserIDs() []int {
	if rc == nil {
		return nil
	}
	ids := make([]int, 0, len(rc.UserAccesses))
	for _, ua := range rc.UserAccesses {
		ids = append(ids, ua.UserID)
	}
	return ids
}

// TeamIDs returns the ids of teams granted access.
func (rc *ResourceControl) TeamIDs() []int {
	if rc == nil {
		return nil
	}
	ids := make([]int, 0, len(rc.TeamAccesses))
	for _, ta := range rc.TeamAccesses {
		ids = append(ids, ta.TeamID)
	}
	return ids
}

// UserAccess grants a user access to a resource.
type UserAccess struct {
	UserID      int `json:"UserId"`
	AccessLevel int `json:"AccessLevel,omitempty"`
}

// TeamAccess grants a team access to a resource.
type TeamAccess struct {
	TeamID      int `json:"TeamId"`
	AccessLevel int `json:"AccessLevel,omitempty"`
}

// User is a Portainer user.
type User struct {
	ID       int    `json:"Id"`
	Username string `json:"Username"`
	Role     int    `json:"Role,omitempty"`
}

// Team is a Portainer team.
type Team struct {
	ID   int    `json:"Id"`
	Name string `json:"Name"`
}

// Registry is a configured image registry. The API never returns the
// password.
type Registry struct {
	ID             int    `json:"Id"`
	Name           string `json:"Name"`
	URL            string `json:"URL"`
	Authentication bool   `json:"Authentication"`
	Username       string `json:"Username"`
}

// SwarmInfo is the subset of the docker swarm inspect response we need.
type SwarmInfo struct {
	ID string `json:"ID"`
}

// AuthRequest is the body of the auth endpoint.
type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by the auth endpoint.
type AuthResponse struct {
	JWT string `json:"jwt"`
}

// StackCreatePayload creates a swarm stack from string content.
type StackCreatePayload struct {
	Name             string `json:"Name"`
	SwarmID          string `json:"SwarmID"`
	StackFileContent string `json:"StackFileContent"`
	Env              []Pair `json:"Env"`
}

// StackUpdatePayload updates an existing stack.
type StackUpdatePayload struct {
	ID               int    `json:"Id"`
	StackFileContent string `json:"StackFileContent"`
	Prune            bool   `json:"Prune"`
	Env              []Pair `json:"Env"`
}

// ResourceControlType identifies the kind of resource a control applies to.
type ResourceControlType string

// ResourceControlTypeStack is the control type for stacks.
const ResourceControlTypeStack ResourceControlType = "stack"

// ResourceControlCreatePayload creates a new access control object.
type ResourceControlCreatePayload struct {
	Type       ResourceControlType `json:"Type"`
	ResourceID string              `json:"ResourceID"`
	Public     bool                `json:"Public"`
	Users      []int               `json:"Users"`
	Teams      []int               `json:"Teams"`
}

// ResourceControlUpdatePayload replaces the grants of an access control
// object.
type ResourceControlUpdatePayload struct {
	Public bool  `json:"Public"`
	Users  []int `json:"Users"`
	Teams  []int `json:"Teams"`
}

// RegistryUpdatePayload updates a registry. Password is always sent.
type RegistryUpdatePayload struct {
	Name           string `json:"Name"`
	URL            string `json:"URL"`
	Authentication bool   `json:"Authentication"`
	Username       string `json:"Username"`
	Password       string `json:"Password"`
}
