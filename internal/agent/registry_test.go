package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BuildEachRole(t *testing.T) {
	deps := testDeps(&fakeText{}, &fakeStructured{}, DefaultWiring())

	for _, role := range Roles() {
		t.Run(string(role), func(t *testing.T) {
			reg := NewRegistry()
			ag, err := reg.Build(role, deps)
			require.NoError(t, err, "Build(%q) should succeed", role)
			require.NotNil(t, ag)
			assert.Equal(t, role, ag.Role())
			assert.NotEmpty(t, ag.Writes())
		})
	}
}

func TestRegistry_UnknownRole(t *testing.T) {
	_, err := NewRegistry().Build(Role("qa"), Deps{})
	assert.ErrorContains(t, err, `no factory registered for role "qa"`)
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	reg.Register(RoleJSDeveloper, func(Deps) Agent {
		return NewBaseAgent(RoleJSDeveloper, nil, []Field{FieldOutputJS},
			func(context.Context, State) (Update, error) {
				return Update{FieldOutputJS: "stub"}, nil
			})
	})

	ag, err := reg.Build(RoleJSDeveloper, Deps{})
	require.NoError(t, err)
	u, err := ag.Run(context.Background(), NewState("x"))
	require.NoError(t, err)
	assert.Equal(t, "stub", u[FieldOutputJS])
}

func TestRegistry_RoleMismatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register(RoleCSSDeveloper, NewJSDeveloper)

	_, err := reg.Build(RoleCSSDeveloper, testDeps(&fakeText{}, nil, DefaultWiring()))
	assert.ErrorContains(t, err, "built agent with role")
}

func TestRegistry_BuildAllWritesCoverOutputs(t *testing.T) {
	agents, err := NewRegistry().BuildAll(testDeps(&fakeText{}, &fakeStructured{}, DefaultWiring()))
	require.NoError(t, err)
	require.Len(t, agents, 8)

	written := map[Field]bool{}
	for _, ag := range agents {
		for _, f := range ag.Writes() {
			written[f] = true
		}
	}
	for _, f := range AllFields() {
		if f == FieldRequestUser {
			assert.False(t, written[f])
			continue
		}
		assert.True(t, written[f], "no agent writes %s", f)
	}
}
