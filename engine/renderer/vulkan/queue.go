package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ignite/engine/core"
)

// QueueFamilyAssignment holds the graphics and present family indices of the
// selected adapter. Both are always valid indices once resolved.
type QueueFamilyAssignment struct {
	GraphicsIndex uint32
	PresentIndex  uint32
}

func (q QueueFamilyAssignment) Shared() bool {
	return q.GraphicsIndex == q.PresentIndex
}

// UniqueIndices returns the distinct family indices, graphics first.
func (q QueueFamilyAssignment) UniqueIndices() []uint32 {
	if q.Shared() {
		return []uint32{q.GraphicsIndex}
	}
	return []uint32{q.GraphicsIndex, q.PresentIndex}
}

// ResolveQueueFamilies picks the graphics and present families for adapter.
// Every scan goes by ascending index and takes the first match:
//
//  1. g is the first graphics family; if it can present, both roles use g.
//  2. else the first family that has graphics and can present takes both.
//  3. else the first family that can present takes the present role and g
//     keeps graphics.
func ResolveQueueFamilies(driver Driver, adapter *AdapterDescriptor, surface vk.Surface) (QueueFamilyAssignment, error) {
	count := uint32(len(adapter.QueueFamilies))

	graphics, found := uint32(0), false
	for i := uint32(0); i < count; i++ {
		if adapter.QueueFamilies[i].IsGraphics() {
			graphics, found = i, true
			break
		}
	}
	if !found {
		return QueueFamilyAssignment{}, core.NewStageError(StageResolve, core.ErrNoPresentQueue,
			fmt.Sprintf("adapter '%s' has no graphics queue family", adapter.Name), nil)
	}

	// Presentation support is asked at most once per family.
	presentCache := make(map[uint32]bool, count)
	supports := func(i uint32) (bool, error) {
		if ok, cached := presentCache[i]; cached {
			return ok, nil
		}
		ok, err := driver.SurfaceSupport(adapter, i, surface)
		if err != nil {
			return false, core.NewStageError(StageResolve, core.ErrSurfaceCapabilityQuery,
				fmt.Sprintf("present support of family %d", i), err)
		}
		presentCache[i] = ok
		return ok, nil
	}

	ok, err := supports(graphics)
	if err != nil {
		return QueueFamilyAssignment{}, err
	}
	if ok {
		return logAssignment(QueueFamilyAssignment{GraphicsIndex: graphics, PresentIndex: graphics}), nil
	}

	for i := uint32(0); i < count; i++ {
		if !adapter.QueueFamilies[i].IsGraphics() {
			continue
		}
		ok, err := supports(i)
		if err != nil {
			return QueueFamilyAssignment{}, err
		}
		if ok {
			return logAssignment(QueueFamilyAssignment{GraphicsIndex: i, PresentIndex: i}), nil
		}
	}

	for i := uint32(0); i < count; i++ {
		ok, err := supports(i)
		if err != nil {
			return QueueFamilyAssignment{}, err
		}
		if ok {
			return logAssignment(QueueFamilyAssignment{GraphicsIndex: graphics, PresentIndex: i}), nil
		}
	}

	return QueueFamilyAssignment{}, core.NewStageError(StageResolve, core.ErrNoPresentQueue,
		fmt.Sprintf("adapter '%s': none of %d families can present to the surface", adapter.Name, count), nil)
}

func logAssignment(q QueueFamilyAssignment) QueueFamilyAssignment {
	core.LogDebug("Graphics Family Index: %d", q.GraphicsIndex)
	core.LogDebug("Present Family Index:  %d", q.PresentIndex)
	if !q.Shared() {
		core.LogInfo("Graphics and present use separate queue families.")
	}
	return q
}
