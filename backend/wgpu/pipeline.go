package wgpu

import (
	"fmt"

	"github.com/gogpu/meshgradient/gpucore"
	"github.com/gogpu/wgpu/hal"
)

// stagePipeline holds the GPU objects of one compute stage.
type stagePipeline struct {
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout

	// Compute pipelines keyed by entry point.
	pipelines map[string]hal.ComputePipeline
}

// PipelineCache owns the compiled compute pipelines of every stage.
//
// The cache is built once per device and is read-only afterwards. It is
// not safe to Close while a stage is dispatching; Backend serialises both.
type PipelineCache struct {
	device hal.Device
	stages map[gpucore.Stage]*stagePipeline
}

// NewPipelineCache compiles all stage shaders and creates their pipelines.
// On error every object created so far is released.
func NewPipelineCache(device hal.Device) (*PipelineCache, error) {
	pc := &PipelineCache{
		device: device,
		stages: make(map[gpucore.Stage]*stagePipeline, len(gpucore.Stages)),
	}
	for _, stage := range gpucore.Stages {
		sp, err := pc.createStage(stage)
		if err != nil {
			pc.Close()
			return nil, err
		}
		pc.stages[stage] = sp
	}
	return pc, nil
}

func (pc *PipelineCache) createStage(stage gpucore.Stage) (*stagePipeline, error) {
	label := stage.String()
	spirv, err := compileSPIRV(label, ShaderSource(stage))
	if err != nil {
		return nil, err
	}

	sp := &stagePipeline{pipelines: make(map[string]hal.ComputePipeline)}

	sp.shader, err = pc.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s shader module: %w", label, err)
	}

	sp.bindLayout, err = pc.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label + "_bind_layout",
		Entries: gpucore.StageLayout(stage),
	})
	if err != nil {
		pc.destroyStage(sp)
		return nil, fmt.Errorf("create %s bind group layout: %w", label, err)
	}

	sp.pipeLayout, err = pc.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{sp.bindLayout},
	})
	if err != nil {
		pc.destroyStage(sp)
		return nil, fmt.Errorf("create %s pipeline layout: %w", label, err)
	}

	for _, entry := range EntryPoints(stage) {
		p, err := pc.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:  label + "_" + entry,
			Layout: sp.pipeLayout,
			Compute: hal.ComputeState{
				Module:     sp.shader,
				EntryPoint: entry,
			},
		})
		if err != nil {
			pc.destroyStage(sp)
			return nil, fmt.Errorf("create %s pipeline %q: %w", label, entry, err)
		}
		sp.pipelines[entry] = p
	}
	return sp, nil
}

func (pc *PipelineCache) destroyStage(sp *stagePipeline) {
	for _, p := range sp.pipelines {
		pc.device.DestroyComputePipeline(p)
	}
	sp.pipelines = nil
	if sp.pipeLayout != nil {
		pc.device.DestroyPipelineLayout(sp.pipeLayout)
		sp.pipeLayout = nil
	}
	if sp.bindLayout != nil {
		pc.device.DestroyBindGroupLayout(sp.bindLayout)
		sp.bindLayout = nil
	}
	if sp.shader != nil {
		pc.device.DestroyShaderModule(sp.shader)
		sp.shader = nil
	}
}

// stage returns the pipeline objects of a stage and the compute pipeline
// of its entry point.
func (pc *PipelineCache) stage(stage gpucore.Stage, entry string) (*stagePipeline, hal.ComputePipeline, error) {
	sp, ok := pc.stages[stage]
	if !ok {
		return nil, nil, fmt.Errorf("no pipeline for stage %s", stage)
	}
	p, ok := sp.pipelines[entry]
	if !ok {
		return nil, nil, fmt.Errorf("stage %s has no entry point %q", stage, entry)
	}
	return sp, p, nil
}

// PipelineCount returns the number of compute pipelines in the cache.
func (pc *PipelineCache) PipelineCount() int {
	if pc == nil {
		return 0
	}
	n := 0
	for _, sp := range pc.stages {
		n += len(sp.pipelines)
	}
	return n
}

// Close releases all pipeline resources. The device is not destroyed.
func (pc *PipelineCache) Close() {
	if pc == nil || pc.device == nil {
		return
	}
	for stage, sp := range pc.stages {
		pc.destroyStage(sp)
		delete(pc.stages, stage)
	}
}
