package rbac

import (
	"strings"
	"telehealth-service/internal/pkg/dto/responses"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
)

const (
	ObjectRecords       = "records"
	ObjectPatients      = "patients"
	ObjectPractitioners = "practitioners"
	ObjectAppointments  = "appointments"
	ObjectObservations  = "observations"
	ObjectMedications   = "medications"
	ObjectResources     = "resources"

	ActionList   = "list"
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionAccess = "access"
)

// No role inheritance: the order of the p lines is the order roles are reported in.
const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

const policyText = `# records: staff access to any patient record, the linked patient is admitted by the ownership check
p, provider, records, access
p, admin, records, access
# patients: read and update go through records
p, provider, patients, list
p, admin, patients, list
p, provider, patients, create
p, admin, patients, create
p, admin, patients, delete
# practitioners
p, patient, practitioners, list
p, provider, practitioners, list
p, admin, practitioners, list
p, patient, practitioners, read
p, provider, practitioners, read
p, admin, practitioners, read
p, admin, practitioners, create
p, admin, practitioners, update
p, admin, practitioners, delete
# appointments
p, patient, appointments, list
p, provider, appointments, list
p, admin, appointments, list
p, patient, appointments, read
p, provider, appointments, read
p, admin, appointments, read
p, patient, appointments, create
p, provider, appointments, create
p, admin, appointments, create
p, provider, appointments, update
p, admin, appointments, update
p, provider, appointments, delete
p, admin, appointments, delete
# observations
p, patient, observations, list
p, provider, observations, list
p, admin, observations, list
p, patient, observations, read
p, provider, observations, read
p, admin, observations, read
p, provider, observations, create
p, admin, observations, create
p, provider, observations, update
p, admin, observations, update
p, provider, observations, delete
p, admin, observations, delete
# medications
p, patient, medications, list
p, provider, medications, list
p, admin, medications, list
p, patient, medications, read
p, provider, medications, read
p, admin, medications, read
p, provider, medications, create
p, admin, medications, create
p, provider, medications, update
p, admin, medications, update
p, provider, medications, delete
p, admin, medications, delete
# any other resource type
p, patient, resources, list
p, provider, resources, list
p, admin, resources, list
p, patient, resources, read
p, provider, resources, read
p, admin, resources, read
p, provider, resources, create
p, admin, resources, create
p, provider, resources, update
p, admin, resources, update
p, admin, resources, delete`

// Policy answers role checks from a casbin enforcer loaded with the route matrix.
// Grant is meant for route setup; rules are not added while serving.
type Policy struct {
	enforcer *casbin.Enforcer
}

func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m, stringadapter.NewAdapter(policyText))
	if err != nil {
		return nil, err
	}
	return &Policy{enforcer: enforcer}, nil
}

func (p *Policy) Allowed(role, object, action string) (bool, error) {
	return p.enforcer.Enforce(role, object, action)
}

// RequiredRoles lists the roles admitted to action on object, in policy order.
func (p *Policy) RequiredRoles(object, action string) ([]string, error) {
	rules, err := p.enforcer.GetFilteredPolicy(1, object, action)
	if err != nil {
		return nil, err
	}
	roles := make([]string, 0, len(rules))
	for _, rule := range rules {
		roles = append(roles, rule[0])
	}
	return roles, nil
}

// Grant admits roles to action on object. Existing rules are left as they are.
func (p *Policy) Grant(object, action string, roles ...string) error {
	for _, role := range roles {
		if _, err := p.enforcer.AddPolicy(role, object, action); err != nil {
			return err
		}
	}
	return nil
}

func (p *Policy) Rules() ([]responses.AccessRule, error) {
	rules, err := p.enforcer.GetPolicy()
	if err != nil {
		return nil, err
	}
	result := make([]responses.AccessRule, 0, len(rules))
	for _, rule := range rules {
		result = append(result, responses.AccessRule{Role: rule[0], Object: rule[1], Action: rule[2]})
	}
	return result, nil
}

// RoleSetObject names the ad hoc object used for a plain "one of these roles" check.
func RoleSetObject(roles ...string) string {
	return "roles:" + strings.Join(roles, "|")
}
