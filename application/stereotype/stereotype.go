/*
Package stereotype 声明式角色标记

应用层类型在 init 中登记自己扮演的角色（应用服务、编排器、后台 worker 等），
启动时可以列出已登记的组件。登记不附加任何行为。
*/
package stereotype

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Role 组件角色
type Role string

const (
	// ApplicationService 对外提供用例的应用服务
	ApplicationService Role = "ApplicationService"
	// ApplicationServiceDelegate 被应用服务委托的协作者
	ApplicationServiceDelegate Role = "ApplicationServiceDelegate"
	// Orchestrator 跨多个聚合或子领域编排的服务
	Orchestrator Role = "Orchestrator"
	// Worker 后台任务
	Worker Role = "Worker"
	// SpecificationFactory 构造规格对象的工厂
	SpecificationFactory Role = "SpecificationFactory"
)

func (r Role) valid() bool {
	switch r {
	case ApplicationService, ApplicationServiceDelegate, Orchestrator, Worker, SpecificationFactory:
		return true
	}
	return false
}

// Component 一条登记记录；Name 为空表示未命名
type Component struct {
	Type reflect.Type
	Role Role
	Name string
}

func (c Component) String() string {
	if c.Name == "" {
		return fmt.Sprintf("%s(%s)", c.Role, c.Type)
	}
	return fmt.Sprintf("%s(%s, name=%s)", c.Role, c.Type, c.Name)
}

// Registry 按 reflect.Type 登记角色
type Registry struct {
	mu sync.RWMutex
	m  map[reflect.Type][]Component
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[reflect.Type][]Component)}
}

// Register 同一类型同一角色只能登记一次
func (r *Registry) Register(t reflect.Type, role Role, name string) error {
	if t == nil {
		return fmt.Errorf("stereotype: type is required")
	}
	if !role.valid() {
		return fmt.Errorf("stereotype: unknown role %q", role)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.m[t] {
		if c.Role == role {
			return fmt.Errorf("stereotype: %s already registered as %s", t, role)
		}
	}
	r.m[t] = append(r.m[t], Component{Type: t, Role: role, Name: name})
	return nil
}

// RolesOf 返回类型登记过的全部角色
func (r *Registry) RolesOf(t reflect.Type) []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Component(nil), r.m[t]...)
}

// Has reports whether t was registered with role
func (r *Registry) Has(t reflect.Type, role Role) bool {
	for _, c := range r.RolesOf(t) {
		if c.Role == role {
			return true
		}
	}
	return false
}

// Components 按角色、类型名排序
func (r *Registry) Components() []Component {
	r.mu.RLock()
	out := make([]Component, 0, len(r.m))
	for _, cs := range r.m {
		out = append(out, cs...)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].Type.String() < out[j].Type.String()
	})
	return out
}

// ============================================================================
// 包级默认登记表
// ============================================================================

var defaultRegistry = NewRegistry()

// Default 返回包级登记表
func Default() *Registry { return defaultRegistry }

// Register 在默认登记表中登记 T
func Register[T any](role Role, name string) error {
	return defaultRegistry.Register(reflect.TypeOf((*T)(nil)).Elem(), role, name)
}

// MustRegister 用于 init，失败时 panic
func MustRegister[T any](role Role, name string) {
	if err := Register[T](role, name); err != nil {
		panic(err)
	}
}

// Is reports whether T was registered with role in the default registry
func Is[T any](role Role) bool {
	return defaultRegistry.Has(reflect.TypeOf((*T)(nil)).Elem(), role)
}
