package resource

import (
	"fmt"

	desim "github.com/cristiklein/simpy"
)

// PutRequest is the Event returned by Container.Put: it succeeds once the
// container has room for the requested amount.
type PutRequest struct {
	*desim.Event
	amount float64
	seq    uint64
}

// GetRequest is the Event returned by Container.Get: it succeeds once the
// container holds at least the requested amount.
type GetRequest struct {
	*desim.Event
	amount float64
	seq    uint64
}

// Container holds a scalar level in [0, capacity]. Put adds to the
// level once doing so would not exceed capacity; Get subtracts from the
// level once it holds enough. Both queues are FIFO. Grounded on spec.md
// §4.7.
type Container struct {
	env      *desim.Environment
	capacity float64
	level    float64
	puts     []*PutRequest
	gets     []*GetRequest
	seq      uint64
}

// NewContainer creates a Container with the given capacity and initial
// level.
func NewContainer(env *desim.Environment, capacity, initialLevel float64) *Container {
	return &Container{env: env, capacity: capacity, level: initialLevel}
}

// Capacity returns the container's maximum level.
func (c *Container) Capacity() float64 { return c.capacity }

// Level returns the container's current level.
func (c *Container) Level() float64 { return c.level }

// Put queues a request to add amount to the level; amount must be
// positive.
func (c *Container) Put(amount float64) *PutRequest {
	if amount <= 0 {
		panic(&desim.UserError{Message: fmt.Sprintf("container put amount must be positive, got %v", amount)})
	}
	c.seq++
	req := &PutRequest{Event: c.env.NewEvent(), amount: amount, seq: c.seq}
	c.puts = append(c.puts, req)
	c.runService()
	return req
}

// Get queues a request to subtract amount from the level; amount must be
// positive.
func (c *Container) Get(amount float64) *GetRequest {
	if amount <= 0 {
		panic(&desim.UserError{Message: fmt.Sprintf("container get amount must be positive, got %v", amount)})
	}
	c.seq++
	req := &GetRequest{Event: c.env.NewEvent(), amount: amount, seq: c.seq}
	c.gets = append(c.gets, req)
	c.runService()
	return req
}

func (c *Container) runService() {
	runService(func() bool {
		progressed := false
		for i := 0; i < len(c.puts); {
			req := c.puts[i]
			if c.level+req.amount <= c.capacity {
				c.level += req.amount
				c.puts = append(c.puts[:i], c.puts[i+1:]...)
				_ = req.Succeed(nil)
				c.env.Logger().Log(desim.LogEntry{
					Level:    desim.LevelDebug,
					Category: "resource",
					Time:     c.env.Now(),
					Message:  "container put admitted",
					Fields:   map[string]any{"amount": req.amount, "level": c.level},
				})
				progressed = true
				continue
			}
			i++
		}
		for i := 0; i < len(c.gets); {
			req := c.gets[i]
			if c.level >= req.amount {
				c.level -= req.amount
				c.gets = append(c.gets[:i], c.gets[i+1:]...)
				_ = req.Succeed(nil)
				c.env.Logger().Log(desim.LogEntry{
					Level:    desim.LevelDebug,
					Category: "resource",
					Time:     c.env.Now(),
					Message:  "container get admitted",
					Fields:   map[string]any{"amount": req.amount, "level": c.level},
				})
				progressed = true
				continue
			}
			i++
		}
		return progressed
	})
}
