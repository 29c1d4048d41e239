package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block of a file.
type fileRoot struct {
	Jobs   []*jobBlock `hcl:"job,block"`
	Remain hcl.Body    `hcl:",remain"`
}

type jobBlock struct {
	Name    string         `hcl:"name,label"`
	Context *hcl.Attribute `hcl:"context,optional"`
	Tasks   []*taskBlock   `hcl:"task,block"`
}

type taskBlock struct {
	ID     string        `hcl:"id,label"`
	Func   string        `hcl:"func"`
	Params []*paramBlock `hcl:"param,block"`
	Range  hcl.Range     `hcl:",def_range"`
}

type paramBlock struct {
	Name     string  `hcl:"name,label"`
	Context  *string `hcl:"context,optional"`
	LinkFrom *string `hcl:"link_from,optional"`
}
