// Package factory instantiates pluggable modules, such as metrics sinks and
// plan log stores, from configuration. A module is selected by its type
// string and receives the raw settings found under conf, which the
// registered constructor decodes into its own typed struct.
//
//	reg := factory.NewRegistry[planlog.Store]()
//	reg.Register("jsonl", func(conf map[string]any) (planlog.Store, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    s, err := planlog.NewJSONLStore(c.Path)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return s, nil
//	})
//	store, err := reg.Create(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": "plans.jsonl"}})
package factory
