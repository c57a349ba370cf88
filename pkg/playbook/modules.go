package playbook

// CollectionPrefix is the namespace of the vendor fact modules.
const CollectionPrefix = "hitachivantara.vspone_block.vsp."

// Module maps one fact category to the collection module that gathers it.
// Spec, when set, is passed to the module as its structured query.
type Module struct {
	Category string
	Name     string
	Spec     []KeyValue
}

// KeyValue is an ordered mapping entry.
type KeyValue struct {
	Key   string
	Value any
}

// FQCN returns the fully qualified module name.
func (m Module) FQCN() string {
	return CollectionPrefix + m.Name
}

// Modules is the fixed set of categories gathered on every run, in task order.
var Modules = []Module{
	{Category: "audit_log_transfer_dest", Name: "hv_audit_log_transfer_dest_facts"},
	{Category: "clpr", Name: "hv_clpr_facts"},
	{Category: "disk_drives", Name: "hv_disk_drive_facts"},
	{Category: "external_parity_groups", Name: "hv_external_paritygroup_facts"},
	{Category: "external_path_groups", Name: "hv_external_path_group_facts"},
	{Category: "external_volumes", Name: "hv_external_volume_facts"},
	{Category: "host_groups", Name: "hv_hg_facts"},
	{Category: "iscsi_remote_connections", Name: "hv_iscsi_remote_connection_facts"},
	{Category: "iscsi_targets", Name: "hv_iscsi_target_facts"},
	{Category: "journals", Name: "hv_journal_facts"},
	{Category: "journal_volumes", Name: "hv_journal_volume_facts"},
	{Category: "ldevs", Name: "hv_ldev_facts"},
	{Category: "microprocessors", Name: "hv_mp_facts"},
	{Category: "parity_groups", Name: "hv_paritygroup_facts"},
	{Category: "quorum_disks", Name: "hv_quorum_disk_facts"},
	{Category: "remote_connections", Name: "hv_remote_connection_facts"},
	{Category: "resource_groups", Name: "hv_resource_group_facts"},
	{Category: "server_priority_managers", Name: "hv_server_priority_manager_facts"},
	{Category: "shadow_image_groups", Name: "hv_shadow_image_group_facts"},
	{Category: "shadow_image_pairs", Name: "hv_shadow_image_pair_facts"},
	{Category: "snapshots", Name: "hv_snapshot_facts"},
	{Category: "snapshot_groups", Name: "hv_snapshot_group_facts"},
	{Category: "snmp_settings", Name: "hv_snmp_settings_facts"},
	{Category: "storage_ports", Name: "hv_storage_port_facts"},
	{
		Category: "hardware_installed",
		Name:     "hv_storage_system_monitor_facts",
		Spec: []KeyValue{
			{Key: "query", Value: "hardware_installed"},
			{Key: "include_component_option", Value: false},
		},
	},
	{
		Category: "channel_boards",
		Name:     "hv_storage_system_monitor_facts",
		Spec: []KeyValue{
			{Key: "query", Value: "channel_boards"},
		},
	},
	{Category: "storage_pools", Name: "hv_storagepool_facts"},
	{Category: "storage_system", Name: "hv_storagesystem_facts"},
	{Category: "users", Name: "hv_user_facts"},
	{Category: "user_groups", Name: "hv_user_group_facts"},
}
